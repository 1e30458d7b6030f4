package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/SscSPs/fincontrol/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalEntryHandler exposes the ledger. Writes go through the gate like any other command.
type journalEntryHandler struct {
	ledger portssvc.LedgerReaderSvc
	gate   portssvc.MakerCheckerSvcFacade
}

func newJournalEntryHandler(ledger portssvc.LedgerReaderSvc, gate portssvc.MakerCheckerSvcFacade) *journalEntryHandler {
	return &journalEntryHandler{ledger: ledger, gate: gate}
}

func registerJournalEntryRoutes(rg *gin.RouterGroup, ledger portssvc.LedgerReaderSvc, gate portssvc.MakerCheckerSvcFacade) {
	h := newJournalEntryHandler(ledger, gate)

	entries := rg.Group("/journalentries")
	{
		entries.POST("", h.createJournalEntry)
		entries.GET("", h.listJournalEntries)
		entries.GET("/:transactionID", h.getJournalEntry)
		entries.POST("/:transactionID/reverse", h.reverseJournalEntry)
	}
}

// createJournalEntry godoc
// @Summary Create a journal entry
// @Description Submits a journalentry.create command. Debits and credits must balance and reference active accounts.
// @Tags journalentries
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   entry body dto.CreateJournalEntryRequest true "Journal entry"
// @Success 200 {object} dto.CommandResponse "Executed"
// @Success 202 {object} dto.CommandResponse "Awaiting approval"
// @Failure 400 {object} dto.ErrorResponse "Invalid or unbalanced entry"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found or inactive"
// @Failure 500 {object} dto.ErrorResponse "Failed to create journal entry"
// @Security BearerAuth
// @Router /journalentries [post]
func (h *journalEntryHandler) createJournalEntry(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, err)
		return
	}

	outcome, err := h.gate.Submit(c.Request.Context(), cc, domain.Command{Operation: dto.OpCreateJournalEntry, Payload: payload})
	if err != nil {
		respondError(c, err, "Failed to create journal entry")
		return
	}
	respondOutcome(c, outcome)
}

// reverseJournalEntry godoc
// @Summary Reverse a journal entry
// @Description Submits a journalentry.reverse command. The mirror entry swaps every debit and credit. An entry can be reversed once.
// @Tags journalentries
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   transactionID path string true "Transaction ID"
// @Param   body body dto.ReverseJournalEntryBody false "Optional note"
// @Success 200 {object} dto.CommandResponse "Executed"
// @Success 202 {object} dto.CommandResponse "Awaiting approval"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 409 {object} dto.ErrorResponse "Already reversed"
// @Failure 500 {object} dto.ErrorResponse "Failed to reverse journal entry"
// @Security BearerAuth
// @Router /journalentries/{transactionID}/reverse [post]
func (h *journalEntryHandler) reverseJournalEntry(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}

	var body dto.ReverseJournalEntryBody
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err)
			return
		}
	}

	payload, err := json.Marshal(dto.ReverseJournalEntryRequest{TransactionID: c.Param("transactionID"), Note: body.Note})
	if err != nil {
		respondError(c, err, "Failed to reverse journal entry")
		return
	}

	outcome, err := h.gate.Submit(c.Request.Context(), cc, domain.Command{Operation: dto.OpReverseJournalEntry, Payload: payload})
	if err != nil {
		respondError(c, err, "Failed to reverse journal entry")
		return
	}
	respondOutcome(c, outcome)
}

// getJournalEntry godoc
// @Summary Get a journal entry
// @Description Retrieves an entry with its lines, reversal links and the audit events recorded against it.
// @Tags journalentries
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve journal entry"
// @Security BearerAuth
// @Router /journalentries/{transactionID} [get]
func (h *journalEntryHandler) getJournalEntry(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}
	transactionID := c.Param("transactionID")

	entry, provenance, err := h.ledger.GetJournalEntry(c.Request.Context(), cc, transactionID)
	if err != nil {
		respondError(c, err, "Failed to retrieve journal entry")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Debug("Journal entry retrieved", slog.String("transaction_id", transactionID))
	resp := dto.ToJournalEntryResponse(entry)
	resp.Provenance = provenance
	c.JSON(http.StatusOK, resp)
}

// listJournalEntries godoc
// @Summary List journal entries
// @Description Lists entries newest first. Reversed entries and their mirrors are hidden unless includeReversals is set.
// @Tags journalentries
// @Produce  json
// @Param   X-Tenant-ID header string true "Tenant"
// @Param   officeID query string false "Office"
// @Param   fromDate query string false "First transaction date (YYYY-MM-DD)"
// @Param   toDate query string false "Last transaction date (YYYY-MM-DD)"
// @Param   includeReversals query bool false "Include reversed entries and reversals"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list journal entries"
// @Security BearerAuth
// @Router /journalentries [get]
func (h *journalEntryHandler) listJournalEntries(c *gin.Context) {
	cc, ok := commandContext(c)
	if !ok {
		return
	}

	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.ledger.ListJournalEntries(c.Request.Context(), cc, params)
	if err != nil {
		respondError(c, err, "Failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}
