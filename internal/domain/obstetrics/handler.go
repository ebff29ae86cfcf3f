package obstetrics

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/obstetrics/expectant", h.ListExpectant)
	api.GET("/obstetrics/expectant/counts", h.CountByTrimester)
}

func (h *Handler) ListExpectant(c echo.Context) error {
	trimester := 0
	if v := c.QueryParam("trimester"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 3 {
			return echo.NewHTTPError(http.StatusBadRequest, "trimester must be 1, 2 or 3")
		}
		trimester = n
	}
	mothers, err := h.svc.ListExpectant(c.Request().Context(), trimester)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, mothers)
}

func (h *Handler) CountByTrimester(c echo.Context) error {
	counts, err := h.svc.CountByTrimester(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, counts)
}
