/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/friendsincode/mealclock/internal/block"
	"github.com/friendsincode/mealclock/internal/catalog"
	"github.com/friendsincode/mealclock/internal/planner"
	"github.com/friendsincode/mealclock/internal/timeofday"
)

type prependRequest struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	OccupantID string `json:"occupant_id,omitempty"`
	FoodID     string `json:"food_id"`
}

type blockResponse struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	Food            string `json:"food,omitempty"`
	FoodName        string `json:"food_name,omitempty"`
	DurationSeconds int64  `json:"duration_seconds"`
	Empty           bool   `json:"empty"`
}

type prependResponse struct {
	Outcome     block.Kind      `json:"outcome"`
	Blocks      []blockResponse `json:"blocks,omitempty"`
	RequiredEnd string          `json:"required_end,omitempty"`
	End         string          `json:"end,omitempty"`
}

// handlePrepend evaluates a prepend without storing anything. A no-fit is
// answered with 409 and the end the block would need.
func (a *API) handlePrepend(w http.ResponseWriter, r *http.Request) {
	var req prependRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	start, err := timeofday.Parse(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_start")
		return
	}
	end, err := timeofday.Parse(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_end")
		return
	}

	outcome, err := a.planner.Prepend(r.Context(), planner.Request{
		Start:       start,
		End:         end,
		OccupantRef: req.OccupantID,
		FoodRef:     req.FoodID,
	})
	switch {
	case err == nil:
	case errors.Is(err, block.ErrInvertedBlock):
		writeError(w, http.StatusBadRequest, "inverted_block")
		return
	case errors.Is(err, planner.ErrMissingFood):
		writeError(w, http.StatusBadRequest, "food_id_required")
		return
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "food_not_found")
		return
	default:
		a.writeCatalogError(w, err, "prepend failed")
		return
	}

	switch o := outcome.(type) {
	case block.Failure:
		writeJSON(w, http.StatusConflict, prependResponse{
			Outcome:     o.Kind(),
			RequiredEnd: o.RequiredEnd.String(),
			End:         o.End.String(),
		})
	case block.Replace:
		writeJSON(w, http.StatusOK, prependResponse{
			Outcome: o.Kind(),
			Blocks:  []blockResponse{toBlockResponse(o.Block, req.FoodID)},
		})
	case block.Split:
		writeJSON(w, http.StatusOK, prependResponse{
			Outcome: o.Kind(),
			Blocks: []blockResponse{
				toBlockResponse(o.First, req.FoodID),
				toBlockResponse(o.Second, req.OccupantID),
			},
		})
	}
}

func toBlockResponse(b block.Block, ref string) blockResponse {
	resp := blockResponse{
		Start: b.Start().String(),
		End:   b.End().String(),
		Empty: b.IsEmpty(),
	}
	if f, ok := b.Occupant(); ok {
		resp.Food = ref
		resp.FoodName = f.Name().String()
		resp.DurationSeconds = int64(f.Duration().Seconds())
	}
	return resp
}
