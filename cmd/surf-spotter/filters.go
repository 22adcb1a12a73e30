package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/pipeline"
	"github.com/ngmaloney/surf-spotter/internal/validation"
)

// filterFlags are the per-request options shared by recommend and tui.
// Field names in validation messages are the flag names.
type filterFlags struct {
	MaxPrice float64 `json:"--max-price" validate:"gte=0"`
	MaxHours float64 `json:"--max-hours" validate:"gte=0"`
	ColorBy  string  `json:"--color-by" validate:"omitempty,oneof=distance price"`
	Days     int     `json:"--days" validate:"min=0,max=16"` // 0 uses the configured default
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.MaxPrice, "max-price", 0, "maximum round-trip price in EUR (0 = no limit)")
	cmd.Flags().Float64Var(&f.MaxHours, "max-hours", 0, "maximum drive time in hours (0 = no limit)")
	cmd.Flags().StringVar(&f.ColorBy, "color-by", string(models.ColorByDistance), "colour spots by distance or price")
	cmd.Flags().IntVar(&f.Days, "days", 0, fmt.Sprintf("forecast days, 1-%d (default from config)", pipeline.MaxHorizonDays))
}

func (f *filterFlags) options() (pipeline.Options, error) {
	checked := *f
	checked.ColorBy = strings.ToLower(strings.TrimSpace(f.ColorBy))
	if err := validation.ValidateStruct(&checked); err != nil {
		return pipeline.Options{}, err
	}
	criterion, _ := models.ParseColorCriterion(checked.ColorBy)
	return pipeline.Options{
		MaxPriceEUR:    checked.MaxPrice,
		MaxDriveHours:  checked.MaxHours,
		ColorCriterion: criterion,
		HorizonDays:    checked.Days,
	}, nil
}
