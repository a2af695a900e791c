package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"socialnet/internal/entities"
)

// userArg returns the id in args, or the logged in user when absent.
func userArg(args []string) (int64, error) {
	if len(args) > 0 {
		return parseID(args[0])
	}
	sess, err := svc.Session()
	if err != nil {
		return 0, fail(err)
	}
	return sess.UserID, nil
}

func printUsers(w io.Writer, users []entities.FollowUser) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNICKNAME\tFOLLOWING\tFOLLOWS YOU")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%t\n", u.ID, u.Nickname, u.Following, u.FollowsYou)
	}
	_ = tw.Flush()
}

// setFollow toggles only when the relationship differs from want.
func setFollow(cmd *cobra.Command, args []string, want bool) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	p, err := svc.Profile(cmd.Context(), id)
	if err != nil {
		return fail(err)
	}
	if p.Following != want {
		if _, err := svc.ToggleFollow(cmd.Context(), id); err != nil {
			return fail(err)
		}
	}
	state := "not following"
	if want {
		state = "following"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, p.Nickname)
	return nil
}

var followCmd = &cobra.Command{
	Use:   "follow <user-id>",
	Short: "Follow a user",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setFollow(cmd, args, true) },
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <user-id>",
	Short: "Stop following a user",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setFollow(cmd, args, false) },
}

var followersCmd = &cobra.Command{
	Use:   "followers [user-id]",
	Short: "List followers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := userArg(args)
		if err != nil {
			return err
		}
		pg, err := svc.Followers(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}
		printUsers(cmd.OutOrStdout(), pg.Items)
		return nil
	},
}

var followingCmd = &cobra.Command{
	Use:   "following [user-id]",
	Short: "List followed users",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := userArg(args)
		if err != nil {
			return err
		}
		pg, err := svc.Following(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}
		printUsers(cmd.OutOrStdout(), pg.Items)
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest users to follow",
	RunE: func(cmd *cobra.Command, _ []string) error {
		users, err := svc.Recommendations(cmd.Context())
		if err != nil {
			return fail(err)
		}
		printUsers(cmd.OutOrStdout(), users)
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show [user-id]",
	Short: "Show a profile (yours by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			p   entities.Profile
			err error
		)
		if len(args) == 0 {
			p, err = svc.MyProfile(cmd.Context())
		} else {
			var id int64
			if id, err = parseID(args[0]); err != nil {
				return err
			}
			p, err = svc.Profile(cmd.Context(), id)
		}
		if err != nil {
			return fail(err)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s (id %d)\n", p.Nickname, p.ID)
		if p.Email != "" {
			fmt.Fprintf(w, "email: %s\n", p.Email)
		}
		if p.Bio != "" {
			fmt.Fprintf(w, "bio: %s\n", p.Bio)
		}
		if p.ProfileImageKey != "" {
			fmt.Fprintf(w, "image: %s\n", p.ProfileImageKey)
		}
		fmt.Fprintf(w, "%d posts, %d followers, %d following\n", p.PostCount, p.FollowerCount, p.FollowingCount)
		return nil
	},
}

var (
	editNickname string
	editBio      string
	editImage    string
)

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Change your nickname, bio or picture",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var req entities.UpdateProfileRequest
		if cmd.Flags().Changed("nickname") {
			req.Nickname = &editNickname
		}
		if cmd.Flags().Changed("bio") {
			req.Bio = &editBio
		}
		if cmd.Flags().Changed("image") {
			img, err := uploadFile(cmd, editImage)
			if err != nil {
				return err
			}
			req.ProfileImageKey = &img.Key
		}
		p, err := svc.UpdateProfile(cmd.Context(), req)
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "profile of %s updated\n", p.Nickname)
		return nil
	},
}

func init() {
	profileEditCmd.Flags().StringVar(&editNickname, "nickname", "", "new nickname")
	profileEditCmd.Flags().StringVar(&editBio, "bio", "", "new bio")
	profileEditCmd.Flags().StringVar(&editImage, "image", "", "image file for the profile picture")

	profileCmd.AddCommand(profileShowCmd, profileEditCmd)
	rootCmd.AddCommand(followCmd, unfollowCmd, followersCmd, followingCmd, recommendCmd, profileCmd)
}
