// Package portal drives the external booking portal's multi-page form
// with a headless browser: applicant details, test type, location, slot
// choice, then payment. It is the only component that talks to the
// portal, and it owns a single exclusive browser session per attempt.
package portal

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/example/dtbook/internal/booking"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// DefaultURL is the portal's booking entry page.
const DefaultURL = "https://www.service.transport.qld.gov.au/SBSExternal/application/CleanBookingDE.xhtml"

type Config struct {
	URL         string
	Headless    bool
	Bin         string        // optional browser binary override
	StepTimeout time.Duration // wait bound per form element
}

type Executor struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Executor {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = 20 * time.Second
	}
	return &Executor{cfg: cfg, log: log}
}

// AttemptBooking walks the whole flow once. Every internal fault comes
// back as an error and the engine records the row as failed; nothing
// escapes as a panic. A clean pass with no slot in the window returns
// Booked=false with a nil error.
func (e *Executor) AttemptBooking(ctx context.Context, cfg booking.ValidatedConfig) (booking.Result, error) {
	browser, cleanup, err := e.launch(ctx)
	if err != nil {
		return booking.Result{}, err
	}
	defer cleanup()

	page, err := browser.Page(proto.TargetCreateTarget{URL: e.cfg.URL})
	if err != nil {
		return booking.Result{}, fmt.Errorf("open portal: %w", err)
	}
	page = page.Context(ctx)
	e.log.Info("portal opened", zap.String("identity", cfg.Identity))

	d := cfg.Details

	// Applicant page.
	if err := e.click(page, ".ui-button"); err != nil {
		return booking.Result{}, err
	}
	if err := e.fill(page, byID("CleanBookingDEForm:dlNumber"), cfg.Identity); err != nil {
		return booking.Result{}, err
	}
	if err := e.fill(page, byID("CleanBookingDEForm:contactName"), d.ContactName); err != nil {
		return booking.Result{}, err
	}
	if err := e.fill(page, byID("CleanBookingDEForm:contactPhone"), d.ContactPhone); err != nil {
		return booking.Result{}, err
	}
	if err := e.selectOption(page, byID("CleanBookingDEForm:productType"), "CleanBookingDEForm:productType_items", d.TestType); err != nil {
		return booking.Result{}, err
	}
	if err := e.click(page, ".btn-success"); err != nil {
		return booking.Result{}, err
	}
	if err := e.click(page, byID("BookingConfirmationForm:actionFieldList:confirmButtonField:confirmButton")); err != nil {
		return booking.Result{}, err
	}

	// Location page.
	if err := e.selectOption(page, byID("BookingSearchForm:region_label"), "BookingSearchForm:region_items", d.Region); err != nil {
		return booking.Result{}, err
	}
	if err := e.selectOption(page, byID("BookingSearchForm:centre"), "BookingSearchForm:centre_items", d.Centre); err != nil {
		return booking.Result{}, err
	}
	if err := e.click(page, ".btn-success"); err != nil {
		return booking.Result{}, err
	}

	// Slot page.
	slot, ok, err := e.chooseSlot(page, cfg.Window)
	if err != nil {
		return booking.Result{}, err
	}
	if !ok {
		return booking.Result{}, nil
	}
	if err := e.click(page, byID("slotSelectionForm:actionFieldList:confirmButtonField:confirmButton")); err != nil {
		return booking.Result{}, err
	}
	if err := e.click(page, byID("BookingConfirmationForm:actionFieldList:confirmButtonField:confirmButton")); err != nil {
		return booking.Result{}, err
	}

	// Payment pages.
	if err := e.fill(page, byID("paymentOptionSelectionForm:paymentOptions:emailAddressField:emailAddress"), d.ContactEmail); err != nil {
		return booking.Result{}, err
	}
	if err := e.click(page, ".btn-success"); err != nil {
		return booking.Result{}, err
	}
	if err := e.fill(page, "#CardNumber", d.CardNumber); err != nil {
		return booking.Result{}, err
	}
	if err := e.fill(page, "#ExpiryMonth", d.ExpiryMonth); err != nil {
		return booking.Result{}, err
	}
	if err := e.fill(page, "#ExpiryYear", d.ExpiryYear); err != nil {
		return booking.Result{}, err
	}
	if err := e.fill(page, "#CVN", d.CVN); err != nil {
		return booking.Result{}, err
	}
	if err := e.click(page, "#btnReviewPayment"); err != nil {
		return booking.Result{}, err
	}
	pay, err := page.Timeout(e.cfg.StepTimeout).ElementR("button", "^PAY$")
	if err != nil {
		return booking.Result{}, fmt.Errorf("find PAY button: %w", err)
	}
	if err := pay.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return booking.Result{}, fmt.Errorf("click PAY: %w", err)
	}

	// Receipt close-out is best effort; the payment already went through.
	if err := e.click(page, ".button"); err != nil {
		e.log.Warn("receipt close-out failed", zap.Error(err))
	}

	e.log.Info("booking flow completed", zap.String("slot", slot.Label))
	return booking.Result{Booked: true, SlotLabel: slot.Label}, nil
}

func (e *Executor) launch(ctx context.Context) (*rod.Browser, func(), error) {
	l := launcher.New().
		Headless(e.cfg.Headless).
		Set("blink-settings", "imagesEnabled=false").
		Set("disable-extensions").
		Set("disable-gpu").
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("ignore-certificate-errors")
	if e.cfg.Bin != "" {
		l = l.Bin(e.cfg.Bin)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}
	b := rod.New().ControlURL(u).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}
	cleanup := func() {
		_ = b.Close()
		l.Cleanup()
	}
	return b, cleanup, nil
}

func (e *Executor) element(page *rod.Page, sel string) (*rod.Element, error) {
	el, err := page.Timeout(e.cfg.StepTimeout).Element(sel)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", sel, err)
	}
	return el, nil
}

func (e *Executor) click(page *rod.Page, sel string) error {
	el, err := e.element(page, sel)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", sel, err)
	}
	return nil
}

func (e *Executor) fill(page *rod.Page, sel, value string) error {
	el, err := e.element(page, sel)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("clear %s: %w", sel, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("fill %s: %w", sel, err)
	}
	return nil
}

// selectOption opens a PrimeFaces dropdown and clicks the item whose
// text matches exactly.
func (e *Executor) selectOption(page *rod.Page, trigger, listID, option string) error {
	if err := e.click(page, trigger); err != nil {
		return err
	}
	item, err := page.Timeout(e.cfg.StepTimeout).ElementR(
		`ul[id="`+listID+`"] > li`, "^"+regexp.QuoteMeta(option)+"$")
	if err != nil {
		return fmt.Errorf("option %q in %s: %w", option, listID, err)
	}
	if err := item.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("pick %q in %s: %w", option, listID, err)
	}
	return nil
}

// byID builds an attribute selector; PrimeFaces ids contain colons, so
// the #id shorthand cannot be used.
func byID(id string) string { return `[id="` + id + `"]` }
