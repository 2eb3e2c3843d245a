package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

var (
	syncYes     bool
	syncDryRun  bool
	syncMaxShow int
)

var syncCmd = &cobra.Command{
	Use:   "sync [collection]",
	Short: "Fetch, review and commit changes from a source",
	Long: `Fetches the collection's source snapshot, classifies every record as
new, updated or unchanged against the local store, and shows the
result for review. Nothing is written until the changes are confirmed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "commit without prompting")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "analyze only, never commit")
	syncCmd.Flags().IntVar(&syncMaxShow, "max-show", 20, "maximum records listed per category")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if coordinators == nil {
		return errors.New("sync service not configured")
	}

	collection, err := parseCollection(args[0])
	if err != nil {
		return err
	}
	coordinator := coordinators[collection]

	ctx := context.Background()
	cmd.Printf("Analyzing %s...\n", collection)

	set, err := coordinator.Analyze(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSyncInProgress) {
			return fmt.Errorf("a sync for %s is already running", collection)
		}
		return fmt.Errorf("analyze failed: %w", err)
	}

	printClassification(cmd, set)

	if set.Pending() == 0 {
		cmd.Println("Nothing to commit.")
		coordinator.Cancel()
		return nil
	}
	if syncDryRun {
		cmd.Println("Dry run; discarding analysis.")
		coordinator.Cancel()
		return nil
	}

	if !syncYes {
		ok, err := confirmPrompt(cmd, fmt.Sprintf("Commit %d changes?", set.Pending()))
		if err != nil {
			coordinator.Cancel()
			return err
		}
		if !ok {
			cmd.Println("Cancelled; nothing was written.")
			coordinator.Cancel()
			return nil
		}
	}

	result, err := coordinator.Confirm(ctx)
	if err != nil {
		return fmt.Errorf("commit failed (analysis kept, re-run to retry): %w", err)
	}

	cmd.Printf("Committed %d records (%d created, %d updated) in %d chunks.\n",
		result.Written(), result.Created, result.Updated, result.Chunks)
	return nil
}

// confirmPrompt asks for a y/n answer on the terminal. A non-terminal
// stdin cannot answer, so the caller must pass --yes there.
func confirmPrompt(cmd *cobra.Command, question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("stdin is not a terminal; use --yes to confirm")
	}

	cmd.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// printClassification renders the review summary.
func printClassification(cmd *cobra.Command, set *domain.ClassificationSet) {
	cmd.Println()
	cmd.Println(titleStyle.Render(fmt.Sprintf("%s: %d new, %d updated, %d unchanged",
		set.Collection, len(set.New), len(set.Updated), len(set.Unchanged))))
	if set.Skipped > 0 || set.Deduplicated > 0 {
		cmd.Println(dimStyle.Render(fmt.Sprintf("(%d rows skipped, %d duplicates collapsed)",
			set.Skipped, set.Deduplicated)))
	}
	cmd.Println()

	printCategory(cmd, newStyle.Render("NEW"), set.New)
	printCategory(cmd, updatedStyle.Render("UPDATED"), set.Updated)
}

func printCategory(cmd *cobra.Command, label string, list []domain.Classification) {
	if len(list) == 0 {
		return
	}
	cmd.Printf("%s (%d)\n", label, len(list))

	shown := list
	if len(shown) > syncMaxShow {
		shown = shown[:syncMaxShow]
	}
	for _, cls := range shown {
		line := fmt.Sprintf("  %s  %s  %s",
			cls.NaturalKey,
			cls.Incoming.Timestamp.Format("2006-01-02 15:04"),
			cls.Incoming.Subject)
		cmd.Println(strings.TrimRight(line, " "))
		if cls.Previous != nil {
			for _, change := range fieldChanges(cls) {
				cmd.Println(dimStyle.Render("      " + change))
			}
		}
	}
	if len(list) > syncMaxShow {
		cmd.Println(dimStyle.Render(fmt.Sprintf("  ... and %d more", len(list)-syncMaxShow)))
	}
	cmd.Println()
}

// fieldChanges lists per-field previous -> incoming transitions for an
// updated record.
func fieldChanges(cls domain.Classification) []string {
	var changes []string
	for _, field := range domain.DefaultCompareFields {
		before := cls.Previous.Field(field)
		after := cls.Incoming.Field(field)
		if before != after {
			changes = append(changes, fmt.Sprintf("%s: %q -> %q", field, before, after))
		}
	}
	return changes
}
