package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"socialnet/internal/entities"
	"socialnet/internal/query"
)

var (
	roomName    string
	roomMembers []int64
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat rooms and messages",
}

func roomArg(args []string) (int64, error) { return parseID(args[0]) }

var chatRoomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List your chat rooms",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rooms, err := svc.ChatRooms(cmd.Context())
		if err != nil {
			return fail(err)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tUNREAD\tLAST")
		for _, r := range rooms {
			last := ""
			if r.LastMessage != nil {
				last = oneLine(r.LastMessage.Content)
			}
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", r.ID, r.Name, r.UnreadCount, last)
		}
		return tw.Flush()
	},
}

var chatCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a room with other users",
	RunE: func(cmd *cobra.Command, _ []string) error {
		room, err := svc.CreateChatRoom(cmd.Context(), roomName, roomMembers)
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created room %d\n", room.ID)
		return nil
	},
}

func printMessage(cmd *cobra.Command, m entities.ChatMessage) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s  user %d: %s\n", m.SentAt.Format("15:04:05"), m.SenderID, m.Content)
}

var chatMessagesCmd = &cobra.Command{
	Use:   "messages <room-id>",
	Short: "Show the latest messages of a room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := roomArg(args)
		if err != nil {
			return err
		}
		pages, err := svc.Messages(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}
		msgs := query.Flatten(pages, func(m entities.ChatMessage) int64 { return m.ID })
		for i := len(msgs) - 1; i >= 0; i-- {
			printMessage(cmd, msgs[i])
		}
		return nil
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "send <room-id> <text...>",
	Short: "Send a message",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := roomArg(args)
		if err != nil {
			return err
		}
		_, err = svc.SendMessage(cmd.Context(), id, strings.Join(args[1:], " "))
		return fail(err)
	},
}

var chatReadCmd = &cobra.Command{
	Use:   "read <room-id>",
	Short: "Mark a room as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := roomArg(args)
		if err != nil {
			return err
		}
		return fail(svc.MarkRoomRead(cmd.Context(), id))
	},
}

var chatWatchCmd = &cobra.Command{
	Use:   "watch <room-id>",
	Short: "Print new messages until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := roomArg(args)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return fail(watch(ctx, cmd, id))
	},
}

func watch(ctx context.Context, cmd *cobra.Command, roomID int64) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "watching room %d, ctrl-c to stop\n", roomID)
	return svc.Watch(ctx, roomID, func(m entities.ChatMessage) { printMessage(cmd, m) })
}

func init() {
	chatCreateCmd.Flags().StringVar(&roomName, "name", "", "room name")
	chatCreateCmd.Flags().Int64SliceVar(&roomMembers, "member", nil, "user id to invite (repeatable)")
	_ = chatCreateCmd.MarkFlagRequired("member")

	chatCmd.AddCommand(chatRoomsCmd, chatCreateCmd, chatMessagesCmd, chatSendCmd, chatReadCmd, chatWatchCmd)
	rootCmd.AddCommand(chatCmd)
}
