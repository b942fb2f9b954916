package httpapi

import (
	"net/http"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/slicehub/slicehub/internal/domain"
	"github.com/slicehub/slicehub/internal/pricing"
)

// PricingController exposes the GET/POST/PATCH/DELETE /pricing routes over
// a shared Registry.
type PricingController struct {
	registry *pricing.Registry
}

// NewPricingController builds a PricingController over registry.
func NewPricingController(registry *pricing.Registry) *PricingController {
	return &PricingController{registry: registry}
}

// GetAll handles GET /pricing.
func (p *PricingController) GetAll(c *gin.Context) {
	snapshot, err := p.registry.GetAllCached()
	if err != nil {
		gmw.GetLogger(c).Error("pricing snapshot failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "errorCode": "INTERNAL_PROCESSING_ERROR"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "pricing": snapshot})
}

func techFromPath(c *gin.Context) (domain.Technology, bool) {
	return domain.Canonicalize(c.Param("tech"))
}

// Create handles POST /pricing/{tech}.
func (p *PricingController) Create(c *gin.Context) {
	tech, ok := techFromPath(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errorCode": "INVALID_TECHNOLOGY"})
		return
	}

	var req CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errorCode": "VALIDATION_ERROR", "message": err.Error()})
		return
	}

	key, err := p.registry.Create(tech, req.Material, req.Price)
	if err != nil {
		p.respondMutationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "technology": tech, "material": key, "price": req.Price})
}

// Update handles PATCH /pricing/{tech}/{material}.
func (p *PricingController) Update(c *gin.Context) {
	tech, ok := techFromPath(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errorCode": "INVALID_TECHNOLOGY"})
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errorCode": "VALIDATION_ERROR", "message": err.Error()})
		return
	}

	material := c.Param("material")
	if !materialNamePattern.MatchString(material) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errorCode": "VALIDATION_ERROR", "message": "invalid material name"})
		return
	}

	key, err := p.registry.Update(tech, material, req.Price)
	if err != nil {
		p.respondMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "technology": tech, "material": key, "price": req.Price})
}

// Delete handles DELETE /pricing/{tech}/{material}.
func (p *PricingController) Delete(c *gin.Context) {
	tech, ok := techFromPath(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errorCode": "INVALID_TECHNOLOGY"})
		return
	}

	if err := p.registry.Delete(tech, c.Param("material")); err != nil {
		p.respondMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (p *PricingController) respondMutationError(c *gin.Context, err error) {
	switch {
	case isErr(err, pricing.ErrDuplicateMaterial):
		c.JSON(http.StatusConflict, gin.H{"success": false, "errorCode": "MATERIAL_ALREADY_EXISTS"})
	case isErr(err, pricing.ErrMaterialNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "errorCode": "MATERIAL_NOT_FOUND"})
	case isErr(err, pricing.ErrDefaultUndeletable):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errorCode": "DEFAULT_MATERIAL_UNDELETABLE"})
	case isErr(err, pricing.ErrInvalidRate):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errorCode": "INVALID_PRICE"})
	default:
		gmw.GetLogger(c).Error("pricing mutation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "errorCode": "INTERNAL_PROCESSING_ERROR"})
	}
}
