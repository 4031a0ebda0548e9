package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foodsafe/fs-indexer/internal/api/rest/dto"
	"github.com/foodsafe/fs-indexer/internal/block"
	"github.com/foodsafe/fs-indexer/internal/domain"
	"github.com/foodsafe/fs-indexer/internal/pinning"
	"github.com/foodsafe/fs-indexer/internal/store"
	"github.com/foodsafe/fs-indexer/internal/store/schema"
)

// Keep uploads bounded, documents are certificates and inspection
// reports, not media files.
const MAX_DOCUMENT_SIZE = 10 << 20

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// GetLot retrieves a single lot by its token ID
	// GET /api/v1/lots/:token_id
	GetLot(c *gin.Context)

	// ListLots retrieves lots with optional filters
	// GET /api/v1/lots?status=<status>&recalled=<bool>&owner=<address>&limit=<limit>&offset=<offset>
	ListLots(c *gin.Context)

	// GetLotHistory retrieves the audit trail for a lot in chain order
	// GET /api/v1/lots/:token_id/history?limit=<limit>&offset=<offset>
	GetLotHistory(c *gin.Context)

	// GetLotRecallStatus answers whether a lot has been recalled
	// GET /api/v1/lots/:token_id/recalled
	GetLotRecallStatus(c *gin.Context)

	// ListLotsByOwner retrieves the lots currently held by an address
	// GET /api/v1/owners/:address/lots?limit=<limit>&offset=<offset>
	ListLotsByOwner(c *gin.Context)

	// ListRecalls retrieves recall events, newest first
	// GET /api/v1/recalls?limit=<limit>&offset=<offset>
	ListRecalls(c *gin.Context)

	// GetStats retrieves registry-wide counters
	// GET /api/v1/stats
	GetStats(c *gin.Context)

	// GetChainStatus reports how far the mirror lags the chain head
	// GET /api/v1/chain/status
	GetChainStatus(c *gin.Context)

	// PinDocument pins an uploaded file (requires API key authentication)
	// POST /api/v1/documents
	PinDocument(c *gin.Context)

	// PinDocumentJSON pins a JSON payload (requires API key authentication)
	// POST /api/v1/documents/json
	PinDocumentJSON(c *gin.Context)

	// GetDocument retrieves pinned content by hash
	// GET /api/v1/documents/:hash
	GetDocument(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	store  store.Store
	blocks block.Provider
	pinner pinning.Pinner
}

// NewHandler creates a new REST API handler
func NewHandler(st store.Store, blocks block.Provider, pinner pinning.Pinner) Handler {
	return &handler{
		store:  st,
		blocks: blocks,
		pinner: pinner,
	}
}

func parseTokenID(c *gin.Context) (int64, bool) {
	tokenID, err := strconv.ParseInt(c.Param("token_id"), 10, 64)
	if err != nil || tokenID < 0 {
		respondBadRequest(c, "Invalid token ID")
		return 0, false
	}
	return tokenID, true
}

// GetLot retrieves a single lot by its token ID
func (h *handler) GetLot(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	lot, err := h.store.GetLot(c.Request.Context(), tokenID)
	if err != nil {
		if errors.Is(err, domain.ErrLotNotFound) {
			respondNotFound(c, "Lot not found")
			return
		}
		respondInternalError(c, err, "Failed to get lot", zap.Int64("token_id", tokenID))
		return
	}

	c.JSON(http.StatusOK, dto.FromLot(lot))
}

// ListLots retrieves lots with optional filters
func (h *handler) ListLots(c *gin.Context) {
	filter, err := ParseListLotsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	lots, total, err := h.store.ListLots(c.Request.Context(), filter)
	if err != nil {
		respondInternalError(c, err, "Failed to list lots")
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedLots{
		Items:  dto.FromLots(lots),
		Offset: filter.Offset,
		Total:  total,
	})
}

// GetLotHistory retrieves the audit trail for a lot in chain order
func (h *handler) GetLotHistory(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	limit, offset, err := ParsePageQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if _, err := h.store.GetLot(c.Request.Context(), tokenID); err != nil {
		if errors.Is(err, domain.ErrLotNotFound) {
			respondNotFound(c, "Lot not found")
			return
		}
		respondInternalError(c, err, "Failed to get lot", zap.Int64("token_id", tokenID))
		return
	}

	entries, total, err := h.store.GetLotHistory(c.Request.Context(), tokenID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "Failed to get lot history", zap.Int64("token_id", tokenID))
		return
	}

	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.FromHistoryEntry(&entries[i], h.contentURL(entries[i].ContentHash)))
	}

	c.JSON(http.StatusOK, dto.PaginatedHistoryEntries{
		Items:  items,
		Offset: offset,
		Total:  total,
	})
}

// contentURL resolves a document hash to its gateway URL. The recall
// sentinel and empty hashes resolve to nothing.
func (h *handler) contentURL(contentHash string) string {
	if contentHash == "" || contentHash == schema.RecallContentHash {
		return ""
	}
	return h.pinner.GatewayURL(contentHash)
}

// GetLotRecallStatus answers whether a lot has been recalled
func (h *handler) GetLotRecallStatus(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	lot, err := h.store.GetLot(c.Request.Context(), tokenID)
	if err != nil {
		if errors.Is(err, domain.ErrLotNotFound) {
			respondNotFound(c, "Lot not found")
			return
		}
		respondInternalError(c, err, "Failed to get lot", zap.Int64("token_id", tokenID))
		return
	}

	response := dto.RecallStatusResponse{
		TokenID:    lot.TokenID,
		IsRecalled: lot.IsRecalled,
	}

	if lot.IsRecalled {
		recall, err := h.store.GetLotRecall(c.Request.Context(), tokenID)
		if err != nil {
			respondInternalError(c, err, "Failed to get recall", zap.Int64("token_id", tokenID))
			return
		}
		if recall != nil {
			recallDTO := dto.FromRecallEvent(recall)
			response.Recall = &recallDTO
		}
	}

	c.JSON(http.StatusOK, response)
}

// ListLotsByOwner retrieves the lots currently held by an address
func (h *handler) ListLotsByOwner(c *gin.Context) {
	address := c.Param("address")
	if !domain.IsValidAddress(address) {
		respondBadRequest(c, "Invalid owner address")
		return
	}

	limit, offset, err := ParsePageQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	lots, total, err := h.store.ListLots(c.Request.Context(), store.LotQueryFilter{
		Owner:  domain.ChecksumAddress(address),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondInternalError(c, err, "Failed to list lots", zap.String("owner", address))
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedLots{
		Items:  dto.FromLots(lots),
		Offset: offset,
		Total:  total,
	})
}

// ListRecalls retrieves recall events, newest first
func (h *handler) ListRecalls(c *gin.Context) {
	limit, offset, err := ParsePageQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	recalls, total, err := h.store.ListRecalls(c.Request.Context(), limit, offset)
	if err != nil {
		respondInternalError(c, err, "Failed to list recalls")
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedRecallEvents{
		Items:  dto.FromRecallEvents(recalls),
		Offset: offset,
		Total:  total,
	})
}

// GetStats retrieves registry-wide counters
func (h *handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to get stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetChainStatus reports how far the mirror lags the chain head
func (h *handler) GetChainStatus(c *gin.Context) {
	latest, err := h.blocks.GetLatestBlock(c.Request.Context())
	if err != nil {
		respondUpstreamError(c, err, "Failed to get chain head")
		return
	}

	maxIndexed, err := h.store.MaxIndexedBlock(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to get indexed watermark")
		return
	}

	var lag uint64
	if latest > maxIndexed {
		lag = latest - maxIndexed
	}

	c.JSON(http.StatusOK, dto.ChainStatusResponse{
		LatestBlock:     latest,
		MaxIndexedBlock: maxIndexed,
		BlockLag:        lag,
	})
}

// PinDocument pins an uploaded file
func (h *handler) PinDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "Missing file upload", err.Error())
		return
	}

	if fileHeader.Size > MAX_DOCUMENT_SIZE {
		respondBadRequest(c, fmt.Sprintf("File exceeds maximum size of %d bytes", MAX_DOCUMENT_SIZE))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "Failed to read upload")
		return
	}
	defer file.Close() //nolint:errcheck

	content, err := io.ReadAll(io.LimitReader(file, MAX_DOCUMENT_SIZE+1))
	if err != nil {
		respondInternalError(c, err, "Failed to read upload")
		return
	}
	if len(content) > MAX_DOCUMENT_SIZE {
		respondBadRequest(c, fmt.Sprintf("File exceeds maximum size of %d bytes", MAX_DOCUMENT_SIZE))
		return
	}

	hash, err := h.pinner.PinFile(c.Request.Context(), fileHeader.Filename, content)
	if err != nil {
		respondUpstreamError(c, err, "Failed to pin document", zap.String("file_name", fileHeader.Filename))
		return
	}

	c.JSON(http.StatusCreated, dto.PinResponse{
		ContentHash: hash,
		GatewayURL:  h.pinner.GatewayURL(hash),
	})
}

// pinJSONRequest is the body for POST /documents/json
type pinJSONRequest struct {
	Name    string                 `json:"name" binding:"required"`
	Content map[string]interface{} `json:"content" binding:"required"`
}

// PinDocumentJSON pins a JSON payload
func (h *handler) PinDocumentJSON(c *gin.Context) {
	var req pinJSONRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	hash, err := h.pinner.PinJSON(c.Request.Context(), req.Name, req.Content)
	if err != nil {
		respondUpstreamError(c, err, "Failed to pin document", zap.String("name", req.Name))
		return
	}

	c.JSON(http.StatusCreated, dto.PinResponse{
		ContentHash: hash,
		GatewayURL:  h.pinner.GatewayURL(hash),
	})
}

// GetDocument retrieves pinned content by hash
func (h *handler) GetDocument(c *gin.Context) {
	hash := c.Param("hash")
	if hash == "" || hash == schema.RecallContentHash {
		respondBadRequest(c, "Invalid content hash")
		return
	}

	content, err := h.pinner.Fetch(c.Request.Context(), hash)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			respondNotFound(c, "Document not found")
			return
		}
		respondUpstreamError(c, err, "Failed to fetch document", zap.String("hash", hash))
		return
	}

	c.Data(http.StatusOK, mimetype.Detect(content).String(), content)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		respondWithError(c, http.StatusServiceUnavailable, errCodeInternalError, "Database unreachable")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
