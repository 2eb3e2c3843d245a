package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

var recordFields = map[string]*string{}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage local records directly",
	Long: `Reads and mutates records in the local store. Creates, updates and
deletes are mirrored to the outbound push endpoint on a best-effort
basis; sync itself never deletes records.`,
}

var recordListCmd = &cobra.Command{
	Use:   "list [collection]",
	Short: "List records in a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordList,
}

var recordGetCmd = &cobra.Command{
	Use:   "get [collection] [key]",
	Short: "Show one record",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordGet,
}

var recordCreateCmd = &cobra.Command{
	Use:   "create [collection] [key]",
	Short: "Create a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordCreate,
}

var recordUpdateCmd = &cobra.Command{
	Use:   "update [collection] [key]",
	Short: "Update a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordUpdate,
}

var recordDeleteCmd = &cobra.Command{
	Use:   "delete [collection] [key]",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordDelete,
}

func init() {
	for _, field := range domain.DefaultCompareFields {
		recordFields[field] = new(string)
	}
	for _, cmd := range []*cobra.Command{recordCreateCmd, recordUpdateCmd} {
		for _, field := range domain.DefaultCompareFields {
			cmd.Flags().StringVar(recordFields[field], field, "", "record "+field)
		}
	}

	recordCmd.AddCommand(recordListCmd, recordGetCmd, recordCreateCmd, recordUpdateCmd, recordDeleteCmd)
	rootCmd.AddCommand(recordCmd)
}

func runRecordList(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	collection, err := parseCollection(args[0])
	if err != nil {
		return err
	}

	records, err := recordService.List(context.Background(), collection)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	if len(records) == 0 {
		cmd.Println("No records.")
		return nil
	}
	for _, rec := range records {
		cmd.Printf("%s  %-12s  %s  %s\n",
			rec.NaturalKey, rec.Status,
			rec.Timestamp.Format("2006-01-02 15:04"), rec.Subject)
	}
	return nil
}

func runRecordGet(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	collection, err := parseCollection(args[0])
	if err != nil {
		return err
	}

	rec, err := recordService.Get(context.Background(), collection, args[1])
	if err != nil {
		return err
	}

	cmd.Println(titleStyle.Render(rec.NaturalKey))
	for _, field := range domain.DefaultCompareFields {
		if v := rec.Field(field); v != "" {
			cmd.Printf("  %-12s %s\n", field, v)
		}
	}
	cmd.Printf("  %-12s %s\n", "timestamp", rec.Timestamp.Format(time.RFC3339))
	if !rec.UpdatedAt.IsZero() {
		cmd.Printf("  %-12s %s\n", "updated", rec.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

func runRecordCreate(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	collection, err := parseCollection(args[0])
	if err != nil {
		return err
	}

	rec := recordFromFlags(args[1])
	if err := recordService.Create(context.Background(), collection, rec); err != nil {
		return err
	}
	cmd.Printf("Created %s/%s.\n", collection, rec.Key())
	return nil
}

func runRecordUpdate(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	collection, err := parseCollection(args[0])
	if err != nil {
		return err
	}
	ctx := context.Background()

	// Start from the stored record so unset flags keep their values.
	existing, err := recordService.Get(ctx, collection, args[1])
	if err != nil {
		return err
	}
	rec := *existing
	for field, value := range recordFields {
		if cmd.Flags().Changed(field) {
			rec.SetField(field, *value)
		}
	}

	if err := recordService.Update(ctx, collection, rec); err != nil {
		return err
	}
	cmd.Printf("Updated %s/%s.\n", collection, rec.Key())
	return nil
}

func runRecordDelete(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	collection, err := parseCollection(args[0])
	if err != nil {
		return err
	}

	if err := recordService.Delete(context.Background(), collection, args[1]); err != nil {
		return err
	}
	cmd.Printf("Deleted %s/%s.\n", collection, args[1])
	return nil
}

// recordFromFlags builds a record from the shared field flags.
func recordFromFlags(key string) domain.Record {
	rec := domain.Record{NaturalKey: key, Timestamp: time.Now().UTC()}
	for field, value := range recordFields {
		if *value != "" {
			rec.SetField(field, *value)
		}
	}
	return rec
}
