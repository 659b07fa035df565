package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"coachroadmap/backend/models"
	"coachroadmap/backend/services"
)

// ExportRoadmap renders a client's active engagement as an XLSX workbook:
// one sheet for pillars, one for the 16 week notes, one for metrics.
func ExportRoadmap(p *services.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("client_email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "client_email is required"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		client, eng, err := p.ActiveEngagementByEmail(ctx, email)
		if err != nil {
			fail(c, err)
			return
		}
		pillars, err := p.Store().PillarsByEngagement(ctx, eng.ID)
		if err != nil {
			fail(c, err)
			return
		}
		notes, err := p.Store().WeekNotesByEngagement(ctx, eng.ID)
		if err != nil {
			fail(c, err)
			return
		}
		metrics, err := p.Store().MetricsByEngagement(ctx, eng.ID)
		if err != nil {
			fail(c, err)
			return
		}

		f, err := buildWorkbook(client, eng, pillars, notes, metrics)
		if err != nil {
			fail(c, err)
			return
		}
		filename := fmt.Sprintf("roadmap-cycle%d-%s.xlsx", eng.CycleNumber, eng.ProgramStartDate)
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := f.Write(c.Writer); err != nil {
			c.Status(http.StatusInternalServerError)
		}
	}
}

func buildWorkbook(client *models.Profile, eng *models.Engagement, pillars []models.StrategicPillar, notes []models.WeekNote, metrics []models.FinancialMetric) (*excelize.File, error) {
	f := excelize.NewFile()
	const pillarSheet = "Pillars"
	f.SetSheetName("Sheet1", pillarSheet)

	_ = f.SetSheetRow(pillarSheet, "A1", &[]any{"Client", client.FullName, "Cycle", eng.CycleNumber, "Start", eng.ProgramStartDate})
	_ = f.SetSheetRow(pillarSheet, "A3", &[]any{"Pillar", "Title", "Problem", "Actions", "Expert tip"})
	row := 4
	for _, p := range pillars {
		actions := ""
		for i, a := range p.Actions {
			if i > 0 {
				actions += "\n"
			}
			actions += "- " + a
		}
		_ = f.SetSheetRow(pillarSheet, fmt.Sprintf("A%d", row), &[]any{p.PillarType, p.Title, p.Problem, actions, p.ExpertTip})
		row++
	}

	weekSheet := "Weeks"
	if _, err := f.NewSheet(weekSheet); err != nil {
		return nil, err
	}
	_ = f.SetSheetRow(weekSheet, "A1", &[]any{"Week", "Note"})
	for i, n := range notes {
		_ = f.SetSheetRow(weekSheet, fmt.Sprintf("A%d", i+2), &[]any{n.WeekNumber, n.Comment})
	}

	metricSheet := "Metrics"
	if _, err := f.NewSheet(metricSheet); err != nil {
		return nil, err
	}
	_ = f.SetSheetRow(metricSheet, "A1", &[]any{"Week", "Date", "Revenue", "Cash in bank", "Clients", "Collaborators", "Conversion %"})
	for i, m := range metrics {
		_ = f.SetSheetRow(metricSheet, fmt.Sprintf("A%d", i+2), &[]any{
			m.WeekNumber, m.MetricDate, deref(m.Revenue), deref(m.CashInBank),
			deref(m.ClientsCount), deref(m.CollaboratorsCount), deref(m.ConversionRate),
		})
	}
	return f, nil
}

func deref(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
