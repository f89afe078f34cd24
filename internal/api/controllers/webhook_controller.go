package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
	"saasbase/internal/models/db_models"
	"saasbase/internal/pay"
	"saasbase/internal/pay/aifadian"
	"saasbase/internal/services"
)

const webhookBodyLimit = 1 << 20 // 1MiB

// WebhookController decodes and authenticates provider callbacks, then feeds
// the normalized event into the reconciler. Signature verification is the
// only authentication on these routes.
type WebhookController struct {
	reconciler services.ReconcileService
	stripeCfg  pay.StripeConfig
	afdKey     string
	logger     *zap.SugaredLogger
}

func NewWebhookController(
	reconciler services.ReconcileService,
	stripeCfg pay.StripeConfig,
	afdKey string,
	logger *zap.SugaredLogger,
) *WebhookController {
	return &WebhookController{
		reconciler: reconciler,
		stripeCfg:  stripeCfg,
		afdKey:     afdKey,
		logger:     logger,
	}
}

// stripeEventObject is the slice of the event payload this core reads. The
// metadata was attached by the checkout session builder; nothing is guessed.
type stripeEventObject struct {
	ID               string            `json:"id"`
	CurrentPeriodEnd int64             `json:"current_period_end"`
	Metadata         map[string]string `json:"metadata"`
}

// HandleStripe godoc
// @Summary Stripe webhook endpoint
// @Description Verifies the event signature and reconciles the payment
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param confusion path string true "Extra route secret"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Router /callbacks/stripe/{confusion} [post]
func (w *WebhookController) HandleStripe(c *gin.Context) {
	if c.Param("confusion") != w.stripeCfg.RechargeConfusion {
		c.JSON(http.StatusNotFound, gin.H{"ec": 404, "em": "error"})
		return
	}

	// The raw bytes must reach signature verification untouched.
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, webhookBodyLimit))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		w.stripeCfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		w.logger.Warnw("stripe webhook signature rejected", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionUpdated:
		err = w.handleSubscriptionUpdated(c, &event)
	case stripe.EventTypeChargeUpdated:
		err = w.handleChargeUpdated(c, &event)
	default:
		// Unrecognized event kinds are acknowledged without action.
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// handleSubscriptionUpdated reconciles a recurring renewal: the expiry
// becomes exactly the provider-reported period end.
func (w *WebhookController) handleSubscriptionUpdated(c *gin.Context, event *stripe.Event) error {
	var obj stripeEventObject
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		w.logger.Warnw("stripe subscription payload unreadable", "event_id", event.ID, "error", err)
		return nil
	}

	ev := eventFromStripeMetadata(obj.Metadata)
	ev.OrderID = event.ID
	periodEnd := obj.CurrentPeriodEnd
	ev.PeriodEnd = &periodEnd

	return w.reconciler.Apply(c.Request.Context(), db_models.ProviderStripe, ev)
}

// handleChargeUpdated reconciles a one-off purchase: the expiry extends by
// increaseDay from the later of now and the current expiry.
func (w *WebhookController) handleChargeUpdated(c *gin.Context, event *stripe.Event) error {
	var obj stripeEventObject
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		w.logger.Warnw("stripe charge payload unreadable", "event_id", event.ID, "error", err)
		return nil
	}

	ev := eventFromStripeMetadata(obj.Metadata)
	ev.OrderID = event.ID

	return w.reconciler.Apply(c.Request.Context(), db_models.ProviderStripe, ev)
}

// eventFromStripeMetadata rebuilds the correlation tuple the checkout session
// builder attached. Malformed numbers degrade to an empty tuple, which the
// reconciler acknowledges without mutation.
func eventFromStripeMetadata(metadata map[string]string) services.NormalizedPaymentEvent {
	ev := services.NormalizedPaymentEvent{
		Email:     metadata[pay.MetaEmail],
		ProductID: metadata[pay.MetaProductID],
	}
	if raw, ok := metadata[pay.MetaPrice]; ok {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return services.NormalizedPaymentEvent{}
		}
		ev.Price = price
	}
	if raw, ok := metadata[pay.MetaIncreaseDay]; ok {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return services.NormalizedPaymentEvent{}
		}
		ev.IncreaseDays = days
	}
	return ev
}

type aifadianWebhookBody struct {
	EC   int `json:"ec"`
	Data struct {
		Order struct {
			Remark        string `json:"remark"`
			CustomOrderID string `json:"custom_order_id"`
			OutTradeNo    string `json:"out_trade_no"`
			TotalAmount   string `json:"total_amount"`
		} `json:"order"`
	} `json:"data"`
}

// HandleAifadian godoc
// @Summary Aifadian webhook endpoint
// @Description Decrypts the order remark and reconciles the payment
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /callbacks/aifadian [post]
func (w *WebhookController) HandleAifadian(c *gin.Context) {
	var body aifadianWebhookBody
	if err := c.ShouldBindJSON(&body); err != nil || body.EC != 200 {
		c.JSON(http.StatusBadRequest, gin.H{"ec": 400, "em": "error"})
		return
	}

	remark := aifadian.DecryptRemark(w.afdKey, body.Data.Order.Remark)

	orderID := body.Data.Order.CustomOrderID
	if orderID == "" {
		orderID = body.Data.Order.OutTradeNo
	}
	price, _ := strconv.ParseFloat(body.Data.Order.TotalAmount, 64)

	err := w.reconciler.Apply(c.Request.Context(), db_models.ProviderAifadian, services.NormalizedPaymentEvent{
		Email:        remark.Email,
		ProductID:    remark.ProductID,
		OrderID:      orderID,
		Price:        price,
		IncreaseDays: remark.IncreaseDay,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ec": 500, "em": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ec": 200, "em": "success"})
}
