// ABOUTME: Install Claude Code skill for coach
// ABOUTME: Embeds and installs the skill definition to ~/.claude/skills/

package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

var skillSkipConfirm bool

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install Claude Code skill",
	Long: `Install the coach skill for Claude Code.

This copies the skill definition to ~/.claude/skills/coach/
so Claude Code can use coach commands contextually.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		return installSkill(cmd, home)
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(installSkillCmd)
}

func installSkill(cmd *cobra.Command, home string) error {
	w := out(cmd)
	skillDir := filepath.Join(home, ".claude", "skills", "coach")
	skillPath := filepath.Join(skillDir, "SKILL.md")

	fmt.Fprintln(w, "┌─────────────────────────────────────────────────────────────┐")
	fmt.Fprintln(w, "│              Coach Skill for Claude Code                    │")
	fmt.Fprintln(w, "└─────────────────────────────────────────────────────────────┘")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This will install the coach skill, enabling Claude Code to:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  • Log training, sleep, energy, and soreness")
	fmt.Fprintln(w, "  • Review weekly trends and split balance")
	fmt.Fprintln(w, "  • Give coaching grounded in your history")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Destination:")
	fmt.Fprintf(w, "  %s\n", skillPath)
	fmt.Fprintln(w)

	if _, err := os.Stat(skillPath); err == nil {
		fmt.Fprintln(w, "Note: A skill file already exists and will be overwritten.")
		fmt.Fprintln(w)
	}

	if !skillSkipConfirm {
		if !confirm(cmd, "Install the coach skill? [y/N] ", "y", "yes") {
			fmt.Fprintln(w, "Installation canceled.")
			return nil
		}
		fmt.Fprintln(w)
	}

	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return fmt.Errorf("failed to read embedded skill: %w", err)
	}
	if err := os.MkdirAll(skillDir, 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(skillPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	fmt.Fprintln(w, "✓ Installed coach skill successfully!")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Try asking Claude: \"Log today's push workout\" or \"How was my week?\"")
	return nil
}
