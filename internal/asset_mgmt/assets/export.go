package assets

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"ITPORTAL-backend/internal/platform/apperr"
)

var exportHeader = []string{
	"id", "name", "category_id", "serial_number", "status",
	"quantity", "assignee_id", "handover_date", "remark", "created_at",
}

// ExportCSV streams the asset register as CSV. encoding=utf8 (default),
// utf8bom, sjis — Excel環境向けに cp932 も出せるようにしてある。
func (h *Handler) ExportCSV(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), parseSearchQuery(c))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apiErrFrom(err))
		return
	}

	raw, err := buildExportCSV(items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apiErr(apperr.CodeInternal, "failed to build csv"))
		return
	}

	out, err := encodeCSV(raw, c.DefaultQuery("encoding", "utf8"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(apperr.CodeInvalidArgument, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="assets_export.csv"`)
	c.Data(http.StatusOK, "text/csv", out)
}

func buildExportCSV(items []AssetResponse) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, a := range items {
		rec := []string{
			a.ID,
			a.Name,
			a.CategoryID,
			a.SerialNumber,
			string(a.Status),
			strconv.Itoa(a.Quantity),
			deref(a.AssigneeID),
			fmtDate(a.HandoverDate),
			deref(a.Remark),
			a.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeCSV(raw []byte, encoding string) ([]byte, error) {
	switch encoding {
	case "utf8":
		return raw, nil
	case "utf8bom":
		enc := unicode.UTF8BOM.NewEncoder()
		out, _, err := transform.Bytes(enc, raw)
		return out, err
	case "sjis":
		enc := japanese.ShiftJIS.NewEncoder()
		out, _, err := transform.Bytes(enc, raw)
		return out, err
	default:
		return nil, apperr.ErrInvalid("encoding must be one of utf8, utf8bom, sjis")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fmtDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
