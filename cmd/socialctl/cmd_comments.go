package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"socialnet/internal/entities"
	"socialnet/internal/query"
)

func printComments(cmd *cobra.Command, postID int64) error {
	pages, err := svc.Comments(cmd.Context(), postID)
	if err != nil {
		return fail(err)
	}
	for _, c := range query.Flatten(pages, func(c entities.Comment) int64 { return c.ID }) {
		fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %s: %s\n", c.ID, c.AuthorNickname, oneLine(c.Content))
	}
	return nil
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "List, add and delete comments",
}

var commentListCmd = &cobra.Command{
	Use:   "list <post-id>",
	Short: "List the comments of a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return printComments(cmd, id)
	},
}

var commentAddCmd = &cobra.Command{
	Use:   "add <post-id> <text...>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := svc.CreateComment(cmd.Context(), id, strings.Join(args[1:], " "))
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added comment %d\n", c.ID)
		return nil
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <post-id> <comment-id>",
	Short: "Delete one of your comments",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parseID(args[0])
		if err != nil {
			return err
		}
		commentID, err := parseID(args[1])
		if err != nil {
			return err
		}
		return fail(svc.DeleteComment(cmd.Context(), postID, commentID))
	},
}

func init() {
	commentCmd.AddCommand(commentListCmd, commentAddCmd, commentDeleteCmd)
	rootCmd.AddCommand(commentCmd)
}
