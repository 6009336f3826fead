package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/propinspect/internal/pkg/response"
	"github.com/xxxsen/propinspect/internal/service"
)

type InspectionHandler struct {
	inspections *service.InspectionService
}

func NewInspectionHandler(inspections *service.InspectionService) *InspectionHandler {
	return &InspectionHandler{inspections: inspections}
}

type inspectionRequest struct {
	PropertyName    string `json:"property_name"`
	PropertyAddress string `json:"property_address"`
	InspectionDate  int64  `json:"inspection_date"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
}

func (r inspectionRequest) toInput() service.InspectionInput {
	return service.InspectionInput{
		PropertyName:    r.PropertyName,
		PropertyAddress: r.PropertyAddress,
		InspectionDate:  r.InspectionDate,
		Status:          r.Status,
		Notes:           r.Notes,
	}
}

type itemRequest struct {
	ID     string `json:"id"`
	Room   string `json:"room"`
	Label  string `json:"label"`
	Result string `json:"result"`
	Note   string `json:"note"`
}

type replaceItemsRequest struct {
	Items []itemRequest `json:"items"`
}

func (h *InspectionHandler) Create(c *gin.Context) {
	var req inspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	insp, err := h.inspections.Create(c.Request.Context(), getUserID(c), req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, insp)
}

func (h *InspectionHandler) List(c *gin.Context) {
	items, err := h.inspections.List(c.Request.Context(), getUserID(c), parseUintQuery(c, "limit"), parseUintQuery(c, "offset"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

func (h *InspectionHandler) Get(c *gin.Context) {
	insp, err := h.inspections.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, insp)
}

func (h *InspectionHandler) Update(c *gin.Context) {
	var req inspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	insp, err := h.inspections.Update(c.Request.Context(), getUserID(c), c.Param("id"), req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, insp)
}

func (h *InspectionHandler) Delete(c *gin.Context) {
	if err := h.inspections.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func (h *InspectionHandler) ListItems(c *gin.Context) {
	items, err := h.inspections.ListItems(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

func (h *InspectionHandler) ReplaceItems(c *gin.Context) {
	var req replaceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	inputs := make([]service.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		inputs = append(inputs, service.ItemInput{
			ID:     item.ID,
			Room:   item.Room,
			Label:  item.Label,
			Result: item.Result,
			Note:   item.Note,
		})
	}
	items, err := h.inspections.ReplaceItems(c.Request.Context(), getUserID(c), c.Param("id"), inputs)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}
