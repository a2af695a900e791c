package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"socialnet/internal/entities"
	"socialnet/internal/query"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "Notifications and their settings",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your notifications",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pages, err := svc.Notifications(cmd.Context())
		if err != nil {
			return fail(err)
		}
		for _, n := range query.Flatten(pages, func(n entities.Notification) int64 { return n.ID }) {
			mark := "*"
			if n.Read {
				mark = " "
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s [%d] %-8s %s\n", mark, n.ID, n.Type, n.Message)
		}
		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return fail(svc.MarkNotificationRead(cmd.Context(), id))
	},
}

var notificationsSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change which notifications you receive",
	Long:  "Without flags the current setting is printed. --follow, --comment, --like and --chat switch a type on or off.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ns, err := svc.NotificationSetting(cmd.Context())
		if err != nil {
			return fail(err)
		}

		changed := false
		for name, field := range map[string]*bool{
			"follow":  &ns.FollowEnabled,
			"comment": &ns.CommentEnabled,
			"like":    &ns.LikeEnabled,
			"chat":    &ns.ChatEnabled,
		} {
			if cmd.Flags().Changed(name) {
				v, _ := cmd.Flags().GetBool(name)
				*field = v
				changed = true
			}
		}
		if changed {
			if ns, err = svc.UpdateNotificationSetting(cmd.Context(), ns); err != nil {
				return fail(err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "follow=%t comment=%t like=%t chat=%t\n",
			ns.FollowEnabled, ns.CommentEnabled, ns.LikeEnabled, ns.ChatEnabled)
		return nil
	},
}

func init() {
	for _, name := range []string{"follow", "comment", "like", "chat"} {
		notificationsSettingsCmd.Flags().Bool(name, true, "receive "+name+" notifications")
	}
	notificationsCmd.AddCommand(notificationsListCmd, notificationsReadCmd, notificationsSettingsCmd)
	rootCmd.AddCommand(notificationsCmd)
}
