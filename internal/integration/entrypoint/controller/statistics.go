package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/statistics"
	"github.com/finance-tracker/wallet-ledger/internal/integration/entrypoint/dto"
)

// StatisticsController handles statistics endpoints.
type StatisticsController struct {
	fetchUseCase *statistics.FetchStatsUseCase
}

// NewStatisticsController creates a new statistics controller instance.
func NewStatisticsController(fetchUseCase *statistics.FetchStatsUseCase) *StatisticsController {
	return &StatisticsController{
		fetchUseCase: fetchUseCase,
	}
}

// Fetch handles GET /statistics/:window requests.
func (c *StatisticsController) Fetch(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	output, err := c.fetchUseCase.Execute(ctx.Request.Context(), statistics.FetchStatsInput{
		UserID: userID,
		Window: statistics.Window(ctx.Param("window")),
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToStatisticsResponse(output))
}
