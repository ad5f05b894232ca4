package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/config"
	"github.com/yourname/fittrack/internal/service"
	"github.com/yourname/fittrack/internal/stats"
	"github.com/yourname/fittrack/internal/storage"
)

var (
	statsTimeframe string
	statsWindow    string
	statsJSON      bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize a user's calories, weight and workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		tf, err := stats.ParseTimeframe(statsTimeframe)
		if err != nil {
			return err
		}
		w, err := stats.ParseWindow(statsWindow)
		if err != nil {
			return err
		}
		return withStore(cmd, func(ctx context.Context, _ *config.Config, store storage.Store, user *internal.User) error {
			st, err := service.StatisticsFor(ctx, store, user, tf, w, time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if statsJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			fmt.Fprintf(out, "Window: %s\n", w)
			if st.Calories != nil {
				fmt.Fprintf(out, "Calories: avg %d, high %d, low %d\n", st.Calories.Average, st.Calories.Highest, st.Calories.Lowest)
			} else {
				fmt.Fprintln(out, "Calories: -")
			}
			if st.Weight != nil {
				fmt.Fprintf(out, "Weight: %s kg -> %s kg (%s kg)\n", st.Weight.Start, st.Weight.Current, st.Weight.Change)
			} else {
				fmt.Fprintln(out, "Weight: -")
			}
			if st.Workouts != nil {
				fmt.Fprintf(out, "Workouts: %d, mostly %s, avg %d min\n", st.Workouts.Total, st.Workouts.MostCommonLabel, st.Workouts.AvgDuration)
			} else {
				fmt.Fprintln(out, "Workouts: -")
			}
			fmt.Fprintf(out, "Calorie/weight pairs: %d\n", len(st.Correlation))
			return nil
		})
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsTimeframe, "timeframe", "weekly", "daily, weekly, monthly or yearly")
	statsCmd.Flags().StringVar(&statsWindow, "window", "all", "7days, 30days, 3months, 6months or all")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print the full statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}
