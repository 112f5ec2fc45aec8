package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/DaKloudStudios/cruzremodel-backend/api/responses"
	"github.com/DaKloudStudios/cruzremodel-backend/api/validators"
	estimatesvc "github.com/DaKloudStudios/cruzremodel-backend/internal/estimates"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
	pkgerrors "github.com/DaKloudStudios/cruzremodel-backend/pkg/errors"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/logger"
)

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}

type createEstimateRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	ClientName string `json:"client_name,omitempty" validate:"omitempty,max=200"`
}

func CreateEstimate(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createEstimateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Create(r.Context(), estimatesvc.CreateEstimateInput{
			Title:      payload.Title,
			ClientName: payload.ClientName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ListEstimates(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dtos, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dtos)
	}
}

func GetEstimate(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "estimateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type updateEstimateRequest struct {
	Title      *string `json:"title,omitempty" validate:"omitempty,max=200"`
	ClientName *string `json:"client_name,omitempty" validate:"omitempty,max=200"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=draft sent approved declined"`
}

func UpdateEstimate(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "estimateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateEstimateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := estimatesvc.UpdateEstimateInput{
			Title:      payload.Title,
			ClientName: payload.ClientName,
		}
		if payload.Status != nil {
			status := enums.EstimateStatus(*payload.Status)
			input.Status = &status
		}
		dto, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func DeleteEstimate(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "estimateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type addItemRequest struct {
	Type        string   `json:"type" validate:"required,oneof=labor material other"`
	Description string   `json:"description" validate:"required,max=500"`
	Quantity    *float64 `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Cost        *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Rate        *float64 `json:"rate,omitempty" validate:"omitempty,gte=0"`
	Margin      *float64 `json:"margin_percent,omitempty"`
	CalcBasis   string   `json:"calc_basis,omitempty" validate:"omitempty,max=100"`
	ZoneID      *string  `json:"zone_id,omitempty" validate:"omitempty,uuid"`
}

func AddEstimateItem(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "estimateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := estimatesvc.AddItemInput{
			Type:        enums.ItemType(payload.Type),
			Description: payload.Description,
			Quantity:    payload.Quantity,
			Cost:        payload.Cost,
			Rate:        payload.Rate,
			Margin:      payload.Margin,
			CalcBasis:   payload.CalcBasis,
		}
		if payload.ZoneID != nil {
			zoneID, parseErr := uuid.Parse(*payload.ZoneID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid zone_id"))
				return
			}
			input.ZoneID = &zoneID
		}
		dto, err := svc.AddItem(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

type updateItemRequest struct {
	Quantity *float64 `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Cost     *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Rate     *float64 `json:"rate,omitempty" validate:"omitempty,gte=0"`
	Margin   *float64 `json:"margin_percent,omitempty"`
	// ZoneID distinguishes absent from null: null detaches the item, a
	// UUID moves it.
	ZoneID json.RawMessage `json:"zone_id,omitempty"`
}

func (req updateItemRequest) zoneUpdate() (**uuid.UUID, error) {
	if len(req.ZoneID) == 0 {
		return nil, nil
	}
	if bytes.Equal(bytes.TrimSpace(req.ZoneID), []byte("null")) {
		var cleared *uuid.UUID
		return &cleared, nil
	}
	var raw string
	if err := json.Unmarshal(req.ZoneID, &raw); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid zone_id")
	}
	zoneID, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid zone_id")
	}
	ref := &zoneID
	return &ref, nil
}

func UpdateEstimateItem(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "estimateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		zoneUpdate, err := payload.zoneUpdate()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.UpdateItem(r.Context(), id, itemID, estimatesvc.UpdateItemInput{
			Quantity: payload.Quantity,
			Cost:     payload.Cost,
			Rate:     payload.Rate,
			Margin:   payload.Margin,
			ZoneID:   zoneUpdate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func RemoveEstimateItem(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "estimateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.RemoveItem(r.Context(), id, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type applyMarginRequest struct {
	TargetMarginPercent float64 `json:"target_margin_percent" validate:"gte=0"`
}

func ApplyEstimateMargin(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "estimateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload applyMarginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.ApplyMargin(r.Context(), id, payload.TargetMarginPercent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type zoneRequest struct {
	Label string `json:"label" validate:"required,max=100"`
}

func AddEstimateZone(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "estimateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload zoneRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.AddZone(r.Context(), id, payload.Label)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func UpdateEstimateZone(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "estimateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		zoneID, err := pathUUID(r, "zoneId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload zoneRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.UpdateZone(r.Context(), id, zoneID, payload.Label)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func RemoveEstimateZone(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "estimateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		zoneID, err := pathUUID(r, "zoneId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.RemoveZone(r.Context(), id, zoneID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type adjustmentsRequest struct {
	TripCharge         *bool    `json:"trip_charge,omitempty"`
	EmergencySurcharge *bool    `json:"emergency_surcharge,omitempty"`
	ApplyTax           *bool    `json:"apply_tax,omitempty"`
	TaxLabor           *bool    `json:"tax_labor,omitempty"`
	TaxRatePercent     *float64 `json:"tax_rate_percent,omitempty" validate:"omitempty,gte=0"`
	MinJobFeeApplied   *bool    `json:"min_job_fee_applied,omitempty"`
}

func UpdateEstimateAdjustments(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "estimateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload adjustmentsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.UpdateAdjustments(r.Context(), id, estimatesvc.AdjustmentsInput{
			TripCharge:         payload.TripCharge,
			EmergencySurcharge: payload.EmergencySurcharge,
			ApplyTax:           payload.ApplyTax,
			TaxLabor:           payload.TaxLabor,
			TaxRatePercent:     payload.TaxRatePercent,
			MinJobFeeApplied:   payload.MinJobFeeApplied,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func GetEstimateTotals(svc estimatesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "estimateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totals, err := svc.Totals(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, totals)
	}
}
