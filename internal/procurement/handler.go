package procurement

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/onco-erp/onco/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// Handler manages supplier quotation endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers supplier quotation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/supplier-quotations/{name}", h.getQuotation)
	r.Post("/supplier-quotations/{name}/modification", h.createModification)
	r.Post("/supplier-quotations/{name}/extension", h.createExtension)
	r.Put("/supplier-quotations/{name}/importation-status", h.setImportationStatus)
}

type modificationRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=2000"`
}

type extensionRequest struct {
	ValidDate string `json:"valid_date" validate:"omitempty,datetime=2006-01-02"`
}

type importationStatusRequest struct {
	Status    string                  `json:"status" validate:"required"`
	ActualQty map[int]decimal.Decimal `json:"actual_qty"`
}

type createdResponse struct {
	Name string `json:"name"`
}

func (h *Handler) createModification(w http.ResponseWriter, r *http.Request) {
	var req modificationRequest
	if !h.decode(w, r, &req) {
		return
	}
	name, err := h.service.CreateModification(r.Context(), chi.URLParam(r, "name"), req.Reason)
	if err != nil {
		h.respondError(w, "create modification", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, createdResponse{Name: name})
}

func (h *Handler) createExtension(w http.ResponseWriter, r *http.Request) {
	var req extensionRequest
	if !h.decode(w, r, &req) {
		return
	}
	var validDate *time.Time
	if req.ValidDate != "" {
		parsed, err := time.Parse(dateLayout, req.ValidDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "valid_date must be YYYY-MM-DD")
			return
		}
		validDate = &parsed
	}
	name, err := h.service.CreateExtension(r.Context(), chi.URLParam(r, "name"), validDate)
	if err != nil {
		h.respondError(w, "create extension", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, createdResponse{Name: name})
}

func (h *Handler) getQuotation(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.GetQuotation(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.respondError(w, "get quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newQuotationView(q))
}

func (h *Handler) setImportationStatus(w http.ResponseWriter, r *http.Request) {
	var req importationStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	q, err := h.service.SetImportationStatus(r.Context(), chi.URLParam(r, "name"), ImportationStatus(req.Status), req.ActualQty)
	if err != nil {
		h.respondError(w, "set importation status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newQuotationView(q))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed",
				fmt.Sprintf("%s failed on %s", fieldErrs[0].Field(), fieldErrs[0].Tag()))
			return false
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
	case errors.Is(err, ErrDuplicate):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrDuplicate, err))
	case errors.Is(err, ErrNotSubmitted), errors.Is(err, ErrCancelled),
		errors.Is(err, ErrUnknownImportationStatus), errors.Is(err, ErrValidation):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

type quotationView struct {
	Name              string         `json:"name"`
	NamingSeries      string         `json:"naming_series"`
	DocStatus         int            `json:"docstatus"`
	Supplier          string         `json:"supplier"`
	TransactionDate   string         `json:"transaction_date"`
	ValidTill         string         `json:"valid_till,omitempty"`
	Currency          string         `json:"currency"`
	Terms             string         `json:"terms,omitempty"`
	ImportationStatus string         `json:"importation_status,omitempty"`
	EDA               *edaView       `json:"eda,omitempty"`
	Items             []quotationRow `json:"items"`
}

type edaView struct {
	SPIMRNo                string `json:"spimr_no,omitempty"`
	APIMRNo                string `json:"apimr_no,omitempty"`
	YearPlan               string `json:"year_plan,omitempty"`
	ImportationDate        string `json:"importation_date,omitempty"`
	ImportationApprovalRef string `json:"importation_approval_ref,omitempty"`
	AimOfModify            string `json:"aim_of_modify,omitempty"`
	NewConditions          string `json:"new_conditions,omitempty"`
	AimOfExtend            string `json:"aim_of_extend,omitempty"`
}

type quotationRow struct {
	Idx       int             `json:"idx"`
	ItemCode  string          `json:"item_code"`
	ItemName  string          `json:"item_name"`
	UOM       string          `json:"uom"`
	Qty       decimal.Decimal `json:"qty"`
	ActualQty decimal.Decimal `json:"actual_qty"`
	Rate      decimal.Decimal `json:"rate"`
}

func newQuotationView(q SupplierQuotation) quotationView {
	view := quotationView{
		Name:            q.Name,
		NamingSeries:    q.NamingSeries,
		DocStatus:       int(q.DocStatus),
		Supplier:        q.Supplier,
		TransactionDate: q.TransactionDate.Format(dateLayout),
		ValidTill:       formatDate(q.ValidTill),
		Currency:        q.Currency,
		Terms:           q.Terms,
		Items:           make([]quotationRow, 0, len(q.Items)),
	}
	if IsImportationSeries(q.NamingSeries) {
		view.ImportationStatus = string(q.ImportationStatus)
		view.EDA = &edaView{
			SPIMRNo:                q.SPIMRNo,
			APIMRNo:                q.APIMRNo,
			YearPlan:               q.YearPlan,
			ImportationDate:        formatDate(q.ImportationDate),
			ImportationApprovalRef: q.ImportationApprovalRef,
			AimOfModify:            q.AimOfModify,
			NewConditions:          q.NewConditions,
			AimOfExtend:            q.AimOfExtend,
		}
	}
	for _, item := range q.Items {
		view.Items = append(view.Items, quotationRow{
			Idx:       item.Idx,
			ItemCode:  item.ItemCode,
			ItemName:  item.ItemName,
			UOM:       item.UOM,
			Qty:       item.Qty,
			ActualQty: item.ActualQty,
			Rate:      item.Rate,
		})
	}
	return view
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
