package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/service"
	"mediarental-backend/internal/utils"

	"github.com/gorilla/mux"
)

// BookingHandler exposes the booking engine over JSON/HTTP
type BookingHandler struct {
	booking   service.BookingService
	inventory service.InventoryPool
	discounts service.DiscountResolver
	ledger    service.RentalLedger
	payments  service.PaymentRecorder
}

func NewBookingHandler(
	booking service.BookingService,
	inventory service.InventoryPool,
	discounts service.DiscountResolver,
	ledger service.RentalLedger,
	payments service.PaymentRecorder,
) *BookingHandler {
	return &BookingHandler{
		booking:   booking,
		inventory: inventory,
		discounts: discounts,
		ledger:    ledger,
		payments:  payments,
	}
}

type availabilityResponse struct {
	Units []domain.InventoryUnit `json:"units"`
	Count int                    `json:"count"`
}

// HandleAvailability lists the units free for [start, end), both RFC 3339.
func (h *BookingHandler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	titleID, locationID, err := titleAndLocation(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := queryTime(r, "start")
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := queryTime(r, "end")
	if err != nil {
		writeError(w, r, err)
		return
	}

	units, err := h.inventory.CheckAvailability(r.Context(), titleID, locationID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Units: units, Count: len(units)})
}

func (h *BookingHandler) HandleNextAvailable(w http.ResponseWriter, r *http.Request) {
	titleID, locationID, err := titleAndLocation(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	next, err := h.inventory.NextAvailable(r.Context(), titleID, locationID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*time.Time{"next_available": next})
}

type rentRequest struct {
	CustomerID int32     `json:"customer_id"`
	AgentID    int32     `json:"agent_id"`
	Start      time.Time `json:"start"`
	Days       int32     `json:"days"`
}

func (h *BookingHandler) HandleRent(w http.ResponseWriter, r *http.Request) {
	titleID, locationID, err := titleAndLocation(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body rentRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.booking.RentTitle(r.Context(), domain.RentRequest{
		TitleID:    titleID,
		LocationID: locationID,
		CustomerID: body.CustomerID,
		AgentID:    body.AgentID,
		Start:      body.Start,
		Days:       body.Days,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type rentalResponse struct {
	Rental  *domain.RentalAgreement `json:"rental"`
	Payment *domain.Payment         `json:"payment"`
}

// HandleGetRental returns the agreement and its payment. payment is null
// while the rental is still RESERVED.
func (h *BookingHandler) HandleGetRental(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathID(r, "rentalID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.ledger.Get(r.Context(), rentalID)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, fmt.Errorf("rental %d: %w", rentalID, domain.ErrNotFound))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	payment, err := h.payments.ForRental(r.Context(), rentalID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentalResponse{Rental: rental, Payment: payment})
}

func (h *BookingHandler) HandleCountUnits(w http.ResponseWriter, r *http.Request) {
	titleID, locationID, err := titleAndLocation(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.inventory.CountUnits(r.Context(), titleID, locationID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"units": n})
}

type applyDiscountRequest struct {
	Percentage float64 `json:"percentage"`
	EndDate    string  `json:"end_date"`
}

type applyDiscountResponse struct {
	Discount *domain.Discount      `json:"discount"`
	Outcome  domain.DiscountOutcome `json:"outcome"`
}

func (h *BookingHandler) HandleApplyDiscount(w http.ResponseWriter, r *http.Request) {
	titleID, err := pathID(r, "titleID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body applyDiscountRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	endDate, err := utils.ParseDate(body.EndDate, time.UTC)
	if err != nil {
		writeError(w, r, domain.NewValidationError("end_date", err.Error()))
		return
	}

	d, outcome, err := h.discounts.Apply(r.Context(), titleID, body.Percentage, endDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if outcome != domain.DiscountUpdated {
		status = http.StatusCreated
	}
	writeJSON(w, status, applyDiscountResponse{Discount: d, Outcome: outcome})
}

func (h *BookingHandler) HandleActiveDiscount(w http.ResponseWriter, r *http.Request) {
	titleID, err := pathID(r, "titleID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.discounts.ActiveDiscount(r.Context(), titleID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if d == nil {
		writeError(w, r, fmt.Errorf("title %d has no active discount: %w", titleID, domain.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *BookingHandler) HandleListDiscounts(w http.ResponseWriter, r *http.Request) {
	titleID, err := pathID(r, "titleID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.discounts.ListDiscounts(r.Context(), titleID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Discount{}
	}
	writeJSON(w, http.StatusOK, list)
}

type catalogEditRequest struct {
	Item        domain.CatalogItem `json:"item"`
	LocationID  int32              `json:"location_id"`
	TargetUnits int                `json:"target_units"`
}

func (h *BookingHandler) HandleEditCatalog(w http.ResponseWriter, r *http.Request) {
	titleID, err := pathID(r, "titleID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body catalogEditRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Item.TitleID != 0 && body.Item.TitleID != titleID {
		writeError(w, r, domain.NewValidationError("title_id", "does not match path"))
		return
	}
	body.Item.TitleID = titleID

	res, err := h.booking.EditCatalogItem(r.Context(), domain.CatalogEdit{
		Item:        body.Item,
		LocationID:  body.LocationID,
		TargetUnits: body.TargetUnits,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type countRequest struct {
	Count int `json:"count"`
}

func (h *BookingHandler) HandleGrow(w http.ResponseWriter, r *http.Request) {
	titleID, locationID, err := titleAndLocation(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body countRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	ids, err := h.inventory.Grow(r.Context(), titleID, locationID, body.Count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]int32{"unit_ids": ids})
}

func (h *BookingHandler) HandleShrink(w http.ResponseWriter, r *http.Request) {
	titleID, locationID, err := titleAndLocation(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body countRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	removed, err := h.inventory.Shrink(r.Context(), titleID, locationID, body.Count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"requested": body.Count, "removed": removed})
}

func titleAndLocation(r *http.Request) (int32, int32, error) {
	titleID, err := pathID(r, "titleID")
	if err != nil {
		return 0, 0, err
	}
	locationID, err := pathID(r, "locationID")
	if err != nil {
		return 0, 0, err
	}
	return titleID, locationID, nil
}

func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, domain.NewValidationError(name, "is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(name, "must be RFC 3339")
	}
	return t, nil
}

// RegisterRoutes registers the booking endpoints
func RegisterRoutes(router *mux.Router, h *BookingHandler) {
	api := router.PathPrefix("/api/v1/titles/{titleID:[0-9]+}").Subrouter()
	api.Use(RequestID)

	loc := "/locations/{locationID:[0-9]+}"
	api.HandleFunc(loc+"/availability", h.HandleAvailability).Methods("GET")
	api.HandleFunc(loc+"/next-available", h.HandleNextAvailable).Methods("GET")
	api.HandleFunc(loc+"/rentals", h.HandleRent).Methods("POST")
	api.HandleFunc(loc+"/inventory", h.HandleCountUnits).Methods("GET")
	api.HandleFunc(loc+"/inventory/grow", h.HandleGrow).Methods("POST")
	api.HandleFunc(loc+"/inventory/shrink", h.HandleShrink).Methods("POST")
	api.HandleFunc("/discounts", h.HandleApplyDiscount).Methods("POST")
	api.HandleFunc("/discounts", h.HandleListDiscounts).Methods("GET")
	api.HandleFunc("/discounts/active", h.HandleActiveDiscount).Methods("GET")
	api.HandleFunc("/catalog", h.HandleEditCatalog).Methods("PUT")

	rentals := router.PathPrefix("/api/v1/rentals").Subrouter()
	rentals.Use(RequestID)
	rentals.HandleFunc("/{rentalID:[0-9]+}", h.HandleGetRental).Methods("GET")
}
