package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
)

func (r *Responder) fixture(pick func(*Fixtures) any) HandlerFunc {
	return func(*Request) *Reply {
		return jsonReply(http.StatusOK, pick(r.fixtures))
	}
}

// login accepts any non-empty email and password
func (r *Responder) login(req *Request) *Reply {
	var body domain.LoginRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return errorReply(http.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(body.Email) == "" || strings.TrimSpace(body.Password) == "" {
		return errorReply(http.StatusUnauthorized, "Invalid credentials")
	}

	user := r.directory.Resolve(body.Email)
	token, err := r.tokens.GenerateToken(user, r.tokenTTL)
	if err != nil {
		r.logger.Error("failed to generate token",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return errorReply(http.StatusInternalServerError, "failed to issue token")
	}

	return jsonReply(http.StatusOK, domain.LoginResult{
		Success: true,
		Token:   token,
		User:    &user,
	})
}

func (r *Responder) reply(req *Request) *Reply {
	var body domain.ReplyRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return errorReply(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(body.ReviewID) == "" || strings.TrimSpace(body.ReplyText) == "" {
		return errorReply(http.StatusBadRequest, "reviewId and replyText are required")
	}

	return jsonReply(http.StatusOK, domain.ActionResult{
		Success: true,
		Message: "Reply sent successfully",
	})
}

func (r *Responder) saveSettings(req *Request) *Reply {
	var body domain.AppSettings
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return errorReply(http.StatusBadRequest, "invalid request body")
	}

	return jsonReply(http.StatusOK, domain.SaveSettingsResult{
		Success: true,
		Message: "Settings saved successfully",
		Data:    body,
	})
}

func (r *Responder) download(req *Request) *Reply {
	format := domain.ReportFormat(strings.ToLower(req.Query.Get("type")))

	var render func() ([]byte, error)
	switch format {
	case domain.ReportCSV:
		render = func() ([]byte, error) { return renderCSV(r.fixtures.Reviews) }
	case domain.ReportPDF:
		render = func() ([]byte, error) { return renderPDF(r.fixtures), nil }
	case domain.ReportXLSX:
		if !r.enableXLSX {
			return errorReply(http.StatusBadRequest, "unsupported report type")
		}
		render = func() ([]byte, error) { return renderXLSX(r.fixtures) }
	default:
		return errorReply(http.StatusBadRequest, "unsupported report type")
	}

	// fixtures never change, so a rendered report stays valid
	data, err := r.reports.GetOrLoad("report:"+string(format), reportCacheTTL, render)
	if err != nil {
		r.logger.Error("failed to render report",
			slog.String("type", string(format)),
			slog.String("error", err.Error()),
		)
		return errorReply(http.StatusInternalServerError, "failed to render report")
	}

	return fileReply(ReportFileName(format), ContentType(format), data)
}
