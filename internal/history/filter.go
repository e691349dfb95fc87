// Package history composes and normalizes proposal list filters. The
// normalization contract here is shared with the lifecycle engine's
// listing path: the same cleaned filter feeds both views.
package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coffertool/coffer/internal/api"
	"github.com/coffertool/coffer/internal/common"
	"github.com/coffertool/coffer/internal/model"
)

// RawFilter holds filter input exactly as the user typed it.
type RawFilter struct {
	Ministry   string
	Status     string
	CategoryID string
	MinAmount  string
	MaxAmount  string
}

// Normalize validates and cleans the raw filter into an API filter.
// All violations are collected, not just the first.
func Normalize(raw RawFilter) (api.ProposalFilter, error) {
	var filter api.ProposalFilter
	var fields []string

	filter.Ministry = strings.TrimSpace(raw.Ministry)

	if s := strings.TrimSpace(raw.Status); s != "" {
		status, err := model.ParseProposalStatus(s)
		if err != nil {
			fields = append(fields, fmt.Sprintf("status must be one of %s, %s, %s",
				model.StatusPending, model.StatusApproved, model.StatusRejected))
		} else {
			filter.Status = status
		}
	}

	if s := strings.TrimSpace(raw.CategoryID); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil || id <= 0 {
			fields = append(fields, "category id must be a positive integer")
		} else {
			filter.CategoryID = id
		}
	}

	minAmount, minErr := parseAmount(raw.MinAmount)
	if minErr != nil {
		fields = append(fields, "min amount must be a non-negative number")
	}
	maxAmount, maxErr := parseAmount(raw.MaxAmount)
	if maxErr != nil {
		fields = append(fields, "max amount must be a non-negative number")
	}
	if minAmount != nil && maxAmount != nil && *minAmount > *maxAmount {
		fields = append(fields, "min amount cannot exceed max amount")
	}
	filter.MinAmount = minAmount
	filter.MaxAmount = maxAmount

	if len(fields) > 0 {
		return api.ProposalFilter{}, &common.ValidationError{Fields: fields}
	}
	return filter, nil
}

func parseAmount(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return &v, nil
}
