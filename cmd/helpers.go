package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/adb"
	"github.com/droidcli/droidcli/internal/ui"
)

// newManager builds the device manager from the persistent flags and
// config file. Flags win over config values.
func newManager() *adb.Manager {
	path, _ := rootCmd.PersistentFlags().GetString("adb")
	if path == "" {
		path = cfg.ADBPath
	}
	serial, _ := rootCmd.PersistentFlags().GetString("device")
	if serial == "" {
		serial = cfg.Device
	}
	return adb.NewManager(&adb.ExecRunner{Path: path}, serial)
}

// registerCriteriaFlags adds the shared element-matching flags.
func registerCriteriaFlags(c *cobra.Command) {
	c.Flags().String("text", "", "Match visible text (case-insensitive substring)")
	c.Flags().String("id", "", "Match resource-id exactly")
	c.Flags().String("desc", "", "Match content-desc (case-insensitive substring)")
	c.Flags().String("class", "", "Match widget class exactly")
	c.Flags().Bool("exact", false, "Require exact text match instead of substring")
	c.Flags().Bool("clickable", false, "Only clickable elements")
	c.Flags().Bool("enabled", false, "Only enabled elements")
	c.Flags().Bool("scrollable", false, "Only scrollable elements")
}

// criteriaFromFlags builds matching criteria from the shared flags.
func criteriaFromFlags(c *cobra.Command) ui.Criteria {
	text, _ := c.Flags().GetString("text")
	resID, _ := c.Flags().GetString("id")
	desc, _ := c.Flags().GetString("desc")
	class, _ := c.Flags().GetString("class")
	exact, _ := c.Flags().GetBool("exact")
	clickable, _ := c.Flags().GetBool("clickable")
	enabled, _ := c.Flags().GetBool("enabled")
	scrollable, _ := c.Flags().GetBool("scrollable")
	return ui.Criteria{
		Text:           text,
		ResourceID:     resID,
		ContentDesc:    desc,
		Class:          class,
		ExactText:      exact,
		ClickableOnly:  clickable,
		EnabledOnly:    enabled,
		ScrollableOnly: scrollable,
	}
}

// requireCriteria rejects empty criteria with a usage hint.
func requireCriteria(c ui.Criteria) error {
	if c.Empty() {
		return fmt.Errorf("at least one of --text, --id, --desc, or --class is required")
	}
	return nil
}
