package cli

import (
	"github.com/spf13/cobra"

	"ActivityFeed/internal/domain"
	"ActivityFeed/internal/usecase"
)

func (c *CLI) newFeedCmd() *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Load the viewer's feed",
		Long: `Load the first page of the ranked feed and print the snapshot as JSON.

Examples:
  activityfeed feed --viewer 42
  activityfeed feed --viewer 42 --limit 10 --pages 3 --mode placeholder`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.ctx(cmd)
			feed := c.app.Feed()
			snap, err := feed.Load(ctx, c.options())
			if err != nil {
				return err
			}
			for i := 1; i < pages && snap.HasMore; i++ {
				if snap, err = feed.LoadMore(ctx, snap); err != nil {
					return err
				}
			}
			return c.outputJSON(snap)
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")

	return cmd
}

func (c *CLI) newReactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "react <workout-id> [reaction]",
		Short: "React to a workout; omit the reaction to clear it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.ReactInput{ContentID: args[0]}
			if len(args) == 2 {
				in.Reaction = args[1]
			}
			snap, err := c.app.Feed().ReactToWorkout(c.ctx(cmd), in, c.options())
			if err != nil {
				return err
			}
			return c.outputJSON(snap)
		},
	}
}

func (c *CLI) newCommentCmd() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "comment <workout-id> <text>",
		Short: "Comment on a workout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.CommentInput{ContentID: args[0], Body: args[1], ParentID: parent}
			snap, err := c.app.Feed().CommentOnWorkout(c.ctx(cmd), in, c.options())
			if err != nil {
				return err
			}
			return c.outputJSON(snap)
		},
	}

	cmd.Flags().StringVar(&parent, "reply-to", "", "parent comment id")

	return cmd
}

func (c *CLI) newBlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "block <member-id>",
		Short: "Block a member and drop follows in both directions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.app.Feed().BlockActor(c.ctx(cmd), args[0], c.options())
			if err != nil {
				return err
			}
			return c.outputJSON(snap)
		},
	}
}

func (c *CLI) newUnblockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <member-id>",
		Short: "Lift a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.app.Feed().UnblockActor(c.ctx(cmd), args[0], c.options())
			if err != nil {
				return err
			}
			return c.outputJSON(snap)
		},
	}
}

func (c *CLI) newReportCmd() *cobra.Command {
	var in usecase.ReportInput
	var reason string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report a workout or member",
		Long: `File a personal report. The reported item is hidden from your own feed only.

Examples:
  activityfeed report --viewer 42 --workout w-9 --reason spam
  activityfeed report --viewer 42 --member 7 --reason harassment --details "repeated insults"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Reason = domain.ReportReason(reason)
			snap, err := c.app.Feed().ReportContent(c.ctx(cmd), in, c.options())
			if err != nil {
				return err
			}
			return c.outputJSON(snap)
		},
	}

	cmd.Flags().StringVar(&in.ContentID, "workout", "", "workout id to report")
	cmd.Flags().StringVar(&in.ActorID, "member", "", "member id to report")
	cmd.Flags().StringVar(&reason, "reason", string(domain.ReportOther), "spam, harassment, inappropriate or other")
	cmd.Flags().StringVar(&in.Details, "details", "", "free-text details")

	return cmd
}
