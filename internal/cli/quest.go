package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nova-wellness/nova/internal/daemon"
	"github.com/nova-wellness/nova/internal/domain"
)

func init() {
	questAddCmd.Flags().StringVar(&questTitle, "title", "", "Quest title (required)")
	questAddCmd.Flags().StringVar(&questDescription, "description", "", "Quest description")
	questAddCmd.Flags().StringVar(&questCondition, "condition", "", "Completion condition, e.g. 'streakDays >= 7' (required)")
	questAddCmd.Flags().Int64Var(&questCoins, "coins", 0, "NovaCoins granted on completion")
	questAddCmd.Flags().StringVar(&questBadge, "badge", "", "Badge name granted on completion")
	questAddCmd.Flags().StringVar(&questBadgeIcon, "icon", "", "Badge icon")
	questAddCmd.MarkFlagRequired("title")
	questAddCmd.MarkFlagRequired("condition")

	questCmd.AddCommand(questListCmd)
	questCmd.AddCommand(questAddCmd)
	rootCmd.AddCommand(questCmd)
}

var (
	questTitle       string
	questDescription string
	questCondition   string
	questCoins       int64
	questBadge       string
	questBadgeIcon   string
)

var questCmd = &cobra.Command{
	Use:   "quest",
	Short: "Manage the quest catalog",
}

var questListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List active quests",
	RunE:    runQuestList,
}

func runQuestList(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	quests, err := d.Catalog.ListActive()
	if err != nil {
		return err
	}

	if len(quests) == 0 {
		fmt.Println("No active quests. Run 'nova quest add' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCONDITION\tCOINS\tBADGE")
	for _, q := range quests {
		badge := "-"
		if q.Badge != nil {
			badge = q.Badge.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			q.ID, q.Title, q.Condition, q.RewardCoins, badge)
	}
	return w.Flush()
}

var questAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a quest to the catalog",
	RunE:  runQuestAdd,
}

func runQuestAdd(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	q := domain.Quest{
		Title:       questTitle,
		Description: questDescription,
		Condition:   questCondition,
		RewardCoins: questCoins,
		IsActive:    true,
	}
	if questBadge != "" {
		q.Badge = &domain.BadgeDef{Name: questBadge, Icon: questBadgeIcon}
	}

	created, err := d.Catalog.Create(q)
	if err != nil {
		return err
	}

	fmt.Printf("Created quest %s (%s)\n", created.ID, created.Title)
	return nil
}
