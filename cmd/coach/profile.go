// ABOUTME: CLI commands for viewing and editing the training profile.
// ABOUTME: profile set only changes the fields whose flags were given.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	profileName         string
	profileSplit        string
	profileDaysPerWeek  int
	profileGoals        []string
	profileInjuryNotes  string
	profileDietaryNotes string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View or edit your training profile",
	Long: `The profile holds long-lived context the coach uses in every reply:
training split, days per week, goals, injuries, and dietary notes.

A default profile (Push/Pull/Legs, 4 days a week) is created the first time
you use coach.

EXAMPLES:

  coach profile
  coach profile set --name Sam --days 5 --goal handstand --goal "pancake stretch"
  coach profile set --injury "left knee, avoid deep squats"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showProfile(cmd)
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showProfile(cmd)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := svc.Profile(currentUser())
		if err != nil {
			return friendly("get profile", err)
		}
		p = p.Clone()

		f := cmd.Flags()
		if f.Changed("name") {
			p.Name = profileName
		}
		if f.Changed("split") {
			p.TrainingSplit = profileSplit
		}
		if f.Changed("days") {
			p.DaysPerWeek = profileDaysPerWeek
		}
		if f.Changed("goal") {
			p.Goals = profileGoals
		}
		if f.Changed("injury") {
			p.InjuryNotes = profileInjuryNotes
		}
		if f.Changed("diet") {
			p.DietaryNotes = profileDietaryNotes
		}

		if err := svc.SaveProfile(p); err != nil {
			return friendly("save profile", err)
		}
		fmt.Fprintln(out(cmd), color.GreenString("✓ Profile saved"))
		return showProfile(cmd)
	},
}

func showProfile(cmd *cobra.Command) error {
	p, err := svc.Profile(currentUser())
	if err != nil {
		return friendly("get profile", err)
	}

	w := out(cmd)
	name := p.Name
	if name == "" {
		name = p.UserID
	}
	fmt.Fprintln(w, color.New(color.Bold).Sprint(name))
	fmt.Fprintf(w, "  Split:          %s\n", p.TrainingSplit)
	fmt.Fprintf(w, "  Days per week:  %d\n", p.DaysPerWeek)
	if len(p.Goals) > 0 {
		fmt.Fprintf(w, "  Goals:          %s\n", strings.Join(p.Goals, ", "))
	}
	if p.InjuryNotes != "" {
		fmt.Fprintf(w, "  Injuries:       %s\n", p.InjuryNotes)
	}
	if p.DietaryNotes != "" {
		fmt.Fprintf(w, "  Diet:           %s\n", p.DietaryNotes)
	}
	return nil
}

func init() {
	f := profileSetCmd.Flags()
	f.StringVar(&profileName, "name", "", "display name")
	f.StringVar(&profileSplit, "split", "", "training split, e.g. Push/Pull/Legs")
	f.IntVar(&profileDaysPerWeek, "days", 0, "training days per week (1-7)")
	f.StringArrayVar(&profileGoals, "goal", nil, "goal (repeat for several; replaces all goals)")
	f.StringVar(&profileInjuryNotes, "injury", "", "injury notes")
	f.StringVar(&profileDietaryNotes, "diet", "", "dietary notes")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}
