package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/linktrend/internal/middleware"
	"github.com/iliyamo/linktrend/internal/model"
	"github.com/iliyamo/linktrend/internal/queue"
	"github.com/iliyamo/linktrend/internal/repository"
	queuepub "github.com/iliyamo/linktrend/internal/service"
)

// mobileNumberRe accepts Bangladeshi mobile numbers: 11 digits
// starting 013-019.
var mobileNumberRe = regexp.MustCompile(`^01[3-9]\d{8}$`)

const duplicateTrxMessage = "This transaction ID has already been used. Please check your transaction ID."

// TransactionHandler covers the payment workflow: authenticated users
// submit payment claims, administrators list and resolve them.
// Every state change is also published to the message broker
// best-effort; a broker outage never fails the request.
type TransactionHandler struct {
	Transactions *repository.TransactionRepo
	Videos       *repository.VideoRepo
	Users        *repository.UserRepo
}

func NewTransactionHandler(t *repository.TransactionRepo, v *repository.VideoRepo, u *repository.UserRepo) *TransactionHandler {
	return &TransactionHandler{Transactions: t, Videos: v, Users: u}
}

type submitTransactionReq struct {
	VideoID      uint64 `json:"videoId"`
	UserID       uint64 `json:"userId"`
	Amount       int64  `json:"amount"`
	Method       string `json:"method"`
	MobileNumber string `json:"mobileNumber"`
	TrxRef       string `json:"trxId"`
}

// Submit records a pending payment claim. The submitting user comes
// from the request body; clients without one on hand can rely on the
// session instead. The transaction reference is normalized (trimmed,
// uppercased) before the uniqueness check so casing differences cannot
// smuggle a duplicate through.
func (h *TransactionHandler) Submit(c echo.Context) error {
	var req submitTransactionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	userID := req.UserID
	if userID == 0 {
		if sid, ok := middleware.SessionUserID(c); ok {
			userID = sid
		}
	}
	if userID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId is required"})
	}

	method := model.PaymentMethod(strings.ToLower(strings.TrimSpace(req.Method)))
	trxRef := strings.ToUpper(strings.TrimSpace(req.TrxRef))
	mobile := strings.TrimSpace(req.MobileNumber)

	switch {
	case req.VideoID == 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "videoId is required"})
	case req.Amount <= 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	case !method.Valid():
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported payment method"})
	case !mobileNumberRe.MatchString(mobile):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid mobile number"})
	case len(trxRef) < 6:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "transaction ID must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Videos.GetByID(ctx, req.VideoID); err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	t := model.Transaction{
		VideoID:      req.VideoID,
		UserID:       userID,
		Amount:       req.Amount,
		Method:       method,
		MobileNumber: mobile,
		TrxRef:       trxRef,
	}
	id, err := h.Transactions.Create(ctx, &t)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateReference) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": duplicateTrxMessage})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to submit transaction"})
	}

	created, err := h.Transactions.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to submit transaction"})
	}

	h.publish(c, queue.EventPaymentSubmitted, created)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "transaction": created})
}

// List returns every payment claim, newest first. Admin only.
func (h *TransactionHandler) List(c echo.Context) error {
	trxs, err := h.Transactions.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch transactions"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "transactions": trxs})
}

// ListPending returns unresolved claims only. Admin only.
func (h *TransactionHandler) ListPending(c echo.Context) error {
	trxs, err := h.Transactions.ListPending(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch transactions"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "transactions": trxs})
}

// Approve resolves a pending claim and unlocks the video for the
// submitting user. Resolving twice, or resolving an unknown id, both
// come back 404.
func (h *TransactionHandler) Approve(c echo.Context) error {
	return h.resolve(c, h.Transactions.Approve, queue.EventPaymentApproved)
}

// Reject resolves a pending claim without granting access.
func (h *TransactionHandler) Reject(c echo.Context) error {
	return h.resolve(c, h.Transactions.Reject, queue.EventPaymentRejected)
}

func (h *TransactionHandler) resolve(c echo.Context, fn func(context.Context, uint64) (model.Transaction, error), eventType string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := fn(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update transaction"})
	}

	h.publish(c, eventType, t)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "transaction": t})
}

// publish sends a payment event to the broker. Best-effort: failures
// are logged and swallowed.
func (h *TransactionHandler) publish(c echo.Context, eventType string, t model.Transaction) {
	ev := queue.PaymentEvent{
		Type:          eventType,
		TransactionID: t.ID,
		VideoID:       t.VideoID,
		UserID:        t.UserID,
		Amount:        t.Amount,
		Method:        string(t.Method),
		TrxRef:        t.TrxRef,
		Status:        string(t.Status),
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := queuepub.PublishPaymentEvent(c.Request().Context(), ev); err != nil {
		log.Printf("payment event publish failed (type=%s id=%d): %v", eventType, t.ID, err)
	}
}
