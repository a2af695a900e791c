package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"socialnet/internal/entities"
	"socialnet/internal/query"
)

var (
	board      string
	postBoard  string
	feedPages  int
	content    string
	imagePaths []string
)

func postID(p entities.Post) int64 { return p.ID }

func printPosts(w io.Writer, posts []entities.Post) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBOARD\tAUTHOR\tLIKES\tCOMMENTS\tCONTENT")
	for _, p := range posts {
		heart := " "
		if p.Liked {
			heart = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d%s\t%d\t%s\n",
			p.ID, p.Board, p.AuthorNickname, p.LikeCount, heart, p.CommentCount, oneLine(p.Content))
	}
	_ = tw.Flush()
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the newest posts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pages, err := svc.Feed(cmd.Context(), board)
		if err != nil {
			return fail(err)
		}
		for len(pages.Pages) < feedPages && pages.HasNextPage() {
			if pages, err = svc.FeedNextPage(cmd.Context(), board); err != nil && !errors.Is(err, entities.ErrNoNextPage) {
				return fail(err)
			}
		}
		printPosts(cmd.OutOrStdout(), query.Flatten(pages, postID))
		if pages.HasNextPage() {
			fmt.Fprintln(cmd.OutOrStdout(), "(more with --pages)")
		}
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create, show, delete and like posts",
}

// uploadFile sends a local image through the presigned upload flow.
func uploadFile(cmd *cobra.Command, path string) (entities.UploadedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return entities.UploadedImage{}, err
	}
	defer f.Close()

	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	img, err := svc.UploadImage(cmd.Context(), filepath.Base(path), ct, f)
	if err != nil {
		return entities.UploadedImage{}, fail(err)
	}
	return img, nil
}

var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a post",
	RunE: func(cmd *cobra.Command, _ []string) error {
		req := entities.CreatePostRequest{Board: postBoard, Content: content}
		for _, path := range imagePaths {
			img, err := uploadFile(cmd, path)
			if err != nil {
				return err
			}
			req.ImageKeys = append(req.ImageKeys, img.Key)
		}
		p, err := svc.CreatePost(cmd.Context(), req)
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created post %d\n", p.ID)
		return nil
	},
}

var postShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a post with its first comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		p, err := svc.Post(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "#%d by %s on %s (%s)\n%s\n", p.ID, p.AuthorNickname, p.Board,
			p.CreatedAt.Format("2006-01-02 15:04"), p.Content)
		for _, key := range p.ImageKeys {
			fmt.Fprintf(w, "  image: %s\n", key)
		}
		fmt.Fprintf(w, "%d likes, %d comments\n", p.LikeCount, p.CommentCount)
		return printComments(cmd, id)
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return fail(svc.DeletePost(cmd.Context(), id))
	},
}

var postLikeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Toggle your like on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		res, err := svc.ToggleLike(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}
		verb := "unliked"
		if res.Liked {
			verb = "liked"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s post %d (%d likes)\n", verb, id, res.LikeCount)
		return nil
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an image and print its key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := uploadFile(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", img.Key, img.URL)
		return nil
	},
}

func init() {
	feedCmd.Flags().StringVar(&board, "board", "", "board to show (all when empty)")
	feedCmd.Flags().IntVar(&feedPages, "pages", 1, "number of pages to load")

	postCreateCmd.Flags().StringVar(&postBoard, "board", "free", "board to post to")
	postCreateCmd.Flags().StringVar(&content, "content", "", "post text")
	postCreateCmd.Flags().StringSliceVar(&imagePaths, "image", nil, "image file to attach (repeatable)")
	_ = postCreateCmd.MarkFlagRequired("content")

	postCmd.AddCommand(postCreateCmd, postShowCmd, postDeleteCmd, postLikeCmd)
	rootCmd.AddCommand(feedCmd, postCmd, uploadCmd)
}
