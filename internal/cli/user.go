package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nova-wellness/nova/internal/daemon"
	"github.com/nova-wellness/nova/internal/domain"
)

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userShowCmd)
	rootCmd.AddCommand(userCmd)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create [id]",
	Short: "Create a user with fresh gamification state",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUserCreate,
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	userID := uuid.NewString()
	if len(args) == 1 {
		userID = args[0]
	}

	state := domain.NewGamificationState(userID, time.Now())
	if err := d.DB.CreateUser(state); err != nil {
		return err
	}

	fmt.Printf("Created user %s (level 1, 0 NovaCoins)\n", userID)
	return nil
}

var userShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a user's gamification profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserShow,
}

func runUserShow(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	state, err := d.DB.GetGamification(args[0])
	if err != nil {
		return err
	}
	if state == nil {
		return domain.ErrUserNotFound
	}

	fmt.Printf("User:          %s\n", state.UserID)
	fmt.Printf("NovaCoins:     %d\n", state.NovaCoins)
	fmt.Printf("Level:         %d\n", state.Level)
	fmt.Printf("Streak:        %d days (longest %d)\n", state.StreakDays, state.LongestStreakDays)
	if state.LastStreakDate != "" {
		fmt.Printf("Last active:   %s\n", state.LastStreakDate)
	}

	if len(state.Badges) > 0 {
		fmt.Println("\nBadges:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, b := range state.Badges {
			fmt.Fprintf(w, "  %s %s\t%s\n", b.Icon, b.Name, b.UnlockedAt.Format("2006-01-02"))
		}
		w.Flush()
	}
	if len(state.QuestsCompleted) > 0 {
		fmt.Printf("\nQuests completed: %d\n", len(state.QuestsCompleted))
	}
	return nil
}
