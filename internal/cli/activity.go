package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nova-wellness/nova/internal/daemon"
	"github.com/nova-wellness/nova/internal/domain"
)

func init() {
	rootCmd.AddCommand(logCmd)
}

var logCmd = &cobra.Command{
	Use:   "log <user> <type> [value]",
	Short: "Log a wellness activity for a user",
	Long: `Log one activity and run the gamification pipeline:
coins are granted, the streak is advanced for qualifying types, and
quests are evaluated.

Types: ` + strings.Join(activityTypeNames(), ", "),
	Args: cobra.RangeArgs(2, 3),
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	var value float64
	if len(args) == 3 {
		value, err = strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[2], err)
		}
	}

	res, err := d.Logger.Log(args[0], domain.ActivityType(args[1]), value)
	if err != nil {
		return err
	}

	fmt.Printf("Logged %s for %s\n", args[1], args[0])
	fmt.Printf("  NovaCoins earned: %d\n", res.NovaCoinsEarned)
	fmt.Printf("  Streak: %d days\n", res.StreakDays)
	return nil
}

func activityTypeNames() []string {
	types := domain.ActivityTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	sort.Strings(names)
	return names
}
