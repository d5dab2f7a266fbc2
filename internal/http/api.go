package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hac-portal/internal/balance"
	"hac-portal/internal/domain"
	"hac-portal/internal/export"
	"hac-portal/internal/repository"
	"hac-portal/internal/service"
	"hac-portal/internal/storage"
)

const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	tracking  service.TrackingService
	inventory service.InventoryService
	archive   storage.Service
	bucket    string
	keyPrefix string
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *logrus.Logger
}

func NewHandler(
	users service.UserService,
	tracking service.TrackingService,
	inventory service.InventoryService,
	archive storage.Service,
	bucket, keyPrefix string,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:     users,
		tracking:  tracking,
		inventory: inventory,
		archive:   archive,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	api.POST("/auth/login", h.login)

	auth := api.Group("", h.requireAuth())
	auth.GET("/me", h.me)

	auth.POST("/time/clock-in", h.clockIn)
	auth.POST("/time/clock-out", h.clockOut)
	auth.GET("/time/entries", h.listEntries)
	auth.GET("/time/balance", h.getBalance)
	auth.POST("/time/manual", h.requireCapability(domain.CapabilityBackfill), h.addManualEntry)

	admin := auth.Group("/admin", h.requireAdmin())
	admin.GET("/overview", h.adminOverview)
	admin.PUT("/entries/:id", h.updateEntry)
	admin.DELETE("/entries/:id", h.deleteEntry)
	admin.POST("/users/:id/balance", h.setBalance)
	admin.POST("/letters", h.generateLetter)
	admin.GET("/archive", h.listArchive)

	inv := auth.Group("/inventory", h.requireInventoryAccess())
	inv.GET("", h.listInventory)
	inv.POST("", h.createInventoryItem)
	inv.PUT("/:id", h.updateInventoryItem)
	inv.DELETE("/:id", h.deleteInventoryItem)
	inv.POST("/export", h.exportInventory)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// --- auth ---

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      userResponse `json:"user"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, expires, err := h.issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expires.Format(time.RFC3339),
		User:      userToResponse(user),
	})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, userToResponse(currentUser(c)))
}

// --- time tracking ---

func (h *Handler) clockIn(c *gin.Context) {
	entry, err := h.tracking.ClockIn(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entryToResponse(entry))
}

func (h *Handler) clockOut(c *gin.Context) {
	entry, err := h.tracking.ClockOut(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entryToResponse(entry))
}

type entriesResponse struct {
	Entries []timeEntryResponse `json:"entries"`
	Active  *timeEntryResponse  `json:"active,omitempty"`
	Balance balanceResponse     `json:"balance"`
}

func (h *Handler) listEntries(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	entries, err := h.tracking.Entries(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	active, err := h.tracking.ActiveEntry(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	summary, err := h.tracking.Balance(ctx, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := entriesResponse{
		Entries: entriesToResponse(entries),
		Balance: balanceToResponse(summary),
	}
	if active != nil {
		v := entryToResponse(active)
		resp.Active = &v
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getBalance(c *gin.Context) {
	summary, err := h.tracking.Balance(c.Request.Context(), currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, balanceToResponse(summary))
}

type manualEntryRequest struct {
	Date     string `json:"date" binding:"required"`
	ClockIn  string `json:"clock_in" binding:"required"`
	ClockOut string `json:"clock_out" binding:"required"`
}

func (h *Handler) addManualEntry(c *gin.Context) {
	var req manualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clockIn, err := time.Parse("2006-01-02 15:04", req.Date+" "+req.ClockIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date or time format"})
		return
	}
	clockOut, err := time.Parse("2006-01-02 15:04", req.Date+" "+req.ClockOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date or time format"})
		return
	}

	entry, err := h.tracking.AddManualEntry(c.Request.Context(), currentUser(c).ID, clockIn, clockOut)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entryToResponse(entry))
}

// --- admin ---

type overviewUserResponse struct {
	User        userResponse         `json:"user"`
	Balance     balanceResponse      `json:"balance"`
	Entries     []timeEntryResponse  `json:"entries"`
	Adjustments []adjustmentResponse `json:"adjustments"`
}

func (h *Handler) adminOverview(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.users.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	overview := make([]overviewUserResponse, 0, len(users))
	for i := range users {
		user := &users[i]
		if user.IsAdmin() {
			continue
		}

		summary, err := h.tracking.Balance(ctx, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		entries, err := h.tracking.Entries(ctx, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		adjustments, err := h.tracking.Adjustments(ctx, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		overview = append(overview, overviewUserResponse{
			User:        userToResponse(user),
			Balance:     balanceToResponse(summary),
			Entries:     entriesToResponse(entries),
			Adjustments: adjustmentsToResponse(adjustments, names),
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": overview})
}

type updateEntryRequest struct {
	ClockIn  string `json:"clock_in" binding:"required"`
	ClockOut string `json:"clock_out"`
}

func (h *Handler) updateEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clockIn, err := time.Parse("2006-01-02T15:04", req.ClockIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clock-in format"})
		return
	}
	var clockOut *time.Time
	if req.ClockOut != "" {
		out, err := time.Parse("2006-01-02T15:04", req.ClockOut)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clock-out format"})
			return
		}
		clockOut = &out
	}

	if err := h.tracking.UpdateEntry(c.Request.Context(), id, clockIn, clockOut); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

func (h *Handler) deleteEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.tracking.DeleteEntry(c.Request.Context(), id); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type setBalanceRequest struct {
	NewTotal string `json:"new_total" binding:"required"`
	Reason   string `json:"reason"`
}

func (h *Handler) setBalance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req setBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	adj, err := h.tracking.SetBalance(c.Request.Context(), target, currentUser(c).ID, req.NewTotal, req.Reason)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	summary, err := h.tracking.Balance(c.Request.Context(), target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"adjustment": adjustmentToResponse(adj, nil),
		"balance":    balanceToResponse(summary),
	})
}

type letterRequest struct {
	DocDate         string `json:"doc_date"`
	ProjectType     string `json:"project_type"`
	ProjectName     string `json:"project_name" binding:"required"`
	ClientName      string `json:"client_name"`
	Year            string `json:"year"`
	ContactPerson   string `json:"contact_person"`
	ContactPosition string `json:"contact_position"`
	ContactEmail    string `json:"contact_email"`
}

func (h *Handler) generateLetter(c *gin.Context) {
	var req letterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := domain.LetterFields{
		DocDate:         req.DocDate,
		ProjectType:     req.ProjectType,
		ProjectName:     req.ProjectName,
		ClientName:      req.ClientName,
		Year:            req.Year,
		ContactPerson:   req.ContactPerson,
		ContactPosition: req.ContactPosition,
		ContactEmail:    req.ContactEmail,
	}

	data, err := export.Letter(fields)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := export.LetterFilename(fields)
	h.archiveExport(c, "letters", filename, docxContentType, data)
	serveAttachment(c, filename, docxContentType, data)
}

func (h *Handler) listArchive(c *gin.Context) {
	if h.archive == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	prefix := h.keyPrefix
	if q := c.Query("prefix"); q != "" {
		prefix = q
	}

	objects, err := h.archive.ListObjects(c.Request.Context(), h.bucket, prefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]storageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

// --- inventory ---

type inventoryItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Brand    string `json:"brand"`
	Color    string `json:"color"`
	Quantity string `json:"quantity"`
	Status   string `json:"status"`
	Location string `json:"location"`
}

func (h *Handler) listInventory(c *gin.Context) {
	items, err := h.inventory.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp := make([]inventoryItemResponse, len(items))
	for i := range items {
		resp[i] = itemToResponse(&items[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createInventoryItem(c *gin.Context) {
	var req inventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := requestToItem(req)
	if err := h.inventory.Create(c.Request.Context(), &item); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemToResponse(&item))
}

func (h *Handler) updateInventoryItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req inventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := requestToItem(req)
	item.ID = id
	if err := h.inventory.Update(c.Request.Context(), &item); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemToResponse(&item))
}

func (h *Handler) deleteInventoryItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.inventory.Delete(c.Request.Context(), id); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type exportInventoryRequest struct {
	IDs []int64 `json:"ids"`
}

func (h *Handler) exportInventory(c *gin.Context) {
	var req exportInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.inventory.Selection(c.Request.Context(), req.IDs)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	data, err := export.InventorySpreadsheet(items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := export.InventoryFilename(time.Now().UTC())
	h.archiveExport(c, "inventory", filename, xlsxContentType, data)
	serveAttachment(c, filename, xlsxContentType, data)
}

// --- helpers ---

// archiveExport uploads a copy of a generated file when an archive
// bucket is configured. Failures are logged, never surfaced: the
// download itself must not depend on object storage.
func (h *Handler) archiveExport(c *gin.Context, kind, filename, contentType string, data []byte) {
	if h.archive == nil || h.bucket == "" {
		return
	}

	key := fmt.Sprintf("%s/%s-%s-%s", kind, time.Now().UTC().Format("2006-01-02"), uuid.NewString(), filename)
	_, err := h.archive.UploadObject(c.Request.Context(), key, bytes.NewReader(data), storage.UploadOptions{
		Bucket:      h.bucket,
		KeyPrefix:   h.keyPrefix,
		ContentType: contentType,
	})
	if err != nil && h.logger != nil {
		h.logger.Warnf("archive %s: %v", filename, err)
	}
}

func serveAttachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyClockedIn), errors.Is(err, service.ErrNotClockedIn):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInterval),
		errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrNoSelection),
		errors.Is(err, balance.ErrInvalidFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// --- responses ---

type userResponse struct {
	ID                 int64   `json:"id"`
	Username           string  `json:"username"`
	DailyHours         float64 `json:"daily_hours"`
	Role               string  `json:"role"`
	CanBackfill        bool    `json:"can_backfill"`
	CanManageInventory bool    `json:"can_manage_inventory"`
}

type timeEntryResponse struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"user_id"`
	ClockIn  string  `json:"clock_in"`
	ClockOut *string `json:"clock_out,omitempty"`
	Open     bool    `json:"open"`
}

type balanceResponse struct {
	Seconds int64  `json:"balance_seconds"`
	Display string `json:"balance_display"`
	Exempt  bool   `json:"exempt"`
}

type adjustmentResponse struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	Seconds       int64  `json:"seconds"`
	Display       string `json:"display"`
	Reason        string `json:"reason"`
	AdminUserID   int64  `json:"admin_user_id"`
	AdminUsername string `json:"admin_username,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type inventoryItemResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Color    string `json:"color"`
	Quantity string `json:"quantity"`
	Status   string `json:"status"`
	Location string `json:"location"`
}

type storageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func userToResponse(user *domain.User) userResponse {
	return userResponse{
		ID:                 user.ID,
		Username:           user.Username,
		DailyHours:         user.DailyHours,
		Role:               string(user.Role),
		CanBackfill:        user.CanBackfill,
		CanManageInventory: user.CanManageInventory,
	}
}

func entryToResponse(entry *domain.TimeEntry) timeEntryResponse {
	resp := timeEntryResponse{
		ID:      entry.ID,
		UserID:  entry.UserID,
		ClockIn: entry.ClockIn.Format(time.RFC3339),
		Open:    entry.Open(),
	}
	if entry.ClockOut != nil {
		v := entry.ClockOut.Format(time.RFC3339)
		resp.ClockOut = &v
	}
	return resp
}

func entriesToResponse(entries []domain.TimeEntry) []timeEntryResponse {
	resp := make([]timeEntryResponse, len(entries))
	for i := range entries {
		resp[i] = entryToResponse(&entries[i])
	}
	return resp
}

func balanceToResponse(summary balance.Summary) balanceResponse {
	return balanceResponse{
		Seconds: summary.Seconds,
		Display: summary.Display,
		Exempt:  summary.Exempt,
	}
}

func adjustmentToResponse(adj *domain.BalanceAdjustment, names map[int64]string) adjustmentResponse {
	resp := adjustmentResponse{
		ID:          adj.ID,
		UserID:      adj.UserID,
		Seconds:     adj.Seconds,
		Display:     balance.FormatSeconds(adj.Seconds),
		Reason:      adj.Reason,
		AdminUserID: adj.AdminUserID,
		CreatedAt:   adj.CreatedAt.Format(time.RFC3339),
	}
	if names != nil {
		resp.AdminUsername = names[adj.AdminUserID]
	}
	return resp
}

func adjustmentsToResponse(adjustments []domain.BalanceAdjustment, names map[int64]string) []adjustmentResponse {
	resp := make([]adjustmentResponse, len(adjustments))
	for i := range adjustments {
		resp[i] = adjustmentToResponse(&adjustments[i], names)
	}
	return resp
}

func requestToItem(req inventoryItemRequest) domain.InventoryItem {
	return domain.InventoryItem{
		Name:     req.Name,
		Brand:    req.Brand,
		Color:    req.Color,
		Quantity: req.Quantity,
		Status:   req.Status,
		Location: req.Location,
	}
}

func itemToResponse(item *domain.InventoryItem) inventoryItemResponse {
	return inventoryItemResponse{
		ID:       item.ID,
		Name:     item.Name,
		Brand:    item.Brand,
		Color:    item.Color,
		Quantity: item.Quantity,
		Status:   item.Status,
		Location: item.Location,
	}
}

func objectToResponse(obj storage.ObjectInfo) storageObjectResponse {
	resp := storageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
