package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cris-imc/invitaciones-sub002/pkg/auth"
	"github.com/cris-imc/invitaciones-sub002/pkg/config"
	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
	mw "github.com/cris-imc/invitaciones-sub002/pkg/middleware"
	"github.com/cris-imc/invitaciones-sub002/pkg/response"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/render"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/service"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/wizard"
)

type Deps struct {
	Invitations service.InvitationService
	Gate        service.AccessGate
	Guests      service.GuestService
	RSVPs       service.RSVPService
	Albums      service.AlbumService
	Auth        service.AuthService
	Wizard      *wizard.Store
	Pages       *render.Renderer
	// Uploads serves stored files under Config.Uploads.PublicPrefix.
	Uploads http.Handler
	Config  *config.Config
}

type Handlers struct {
	invitations service.InvitationService
	gate        service.AccessGate
	guests      service.GuestService
	rsvps       service.RSVPService
	albums      service.AlbumService
	auth        service.AuthService
	wizard      *wizard.Store
	pages       *render.Renderer
	uploads     http.Handler
	config      *config.Config
}

func New(d Deps) *Handlers {
	return &Handlers{
		invitations: d.Invitations,
		gate:        d.Gate,
		guests:      d.Guests,
		rsvps:       d.RSVPs,
		albums:      d.Albums,
		auth:        d.Auth,
		wizard:      d.Wizard,
		pages:       d.Pages,
		uploads:     d.Uploads,
		config:      d.Config,
	}
}

// Router wires every route behind the shared middleware stack.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("invitations"))
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(mw.CORS(h.config.Server.AllowedOrigins))
	r.Use(mw.Health)
	r.Use(mw.Metrics("invitations"))
	r.Use(auth.OptionalHost(h.config.Auth.JWTSecret))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	// {invitation} is a numeric id on host routes and a slug on guest routes.
	r.Route("/invitations", func(r chi.Router) {
		r.Get("/", h.ListInvitations)
		r.Post("/", h.CreateInvitation)
		r.Route("/{invitation}", func(r chi.Router) {
			r.Get("/", h.GetInvitation)
			r.Put("/", h.UpdateInvitation)
			r.Get("/theme", h.GetTheme)
			r.Get("/dashboard", h.GetDashboard)
			r.Get("/guests", h.ListGuests)
			r.Post("/guests", h.CreateGuest)
			r.Get("/rsvps", h.ListRSVPs)
			r.Get("/album", h.GetAlbum)
			r.Put("/album", h.SetModeration)
			r.Get("/album/pending", h.ListPendingPhotos)
			r.Post("/album/upload", h.UploadPhoto)
		})
	})

	r.Route("/guests/{guestId}", func(r chi.Router) {
		r.Put("/", h.UpdateGuest)
		r.Delete("/", h.DeleteGuest)
	})

	r.Route("/photos/{photoId}", func(r chi.Router) {
		r.Put("/", h.ApprovePhoto)
		r.Delete("/", h.DeletePhoto)
	})

	r.Post("/rsvp", h.CreateRSVP)
	r.Post("/upload", h.Upload)

	r.Route("/wizard", func(r chi.Router) {
		r.Get("/", h.GetWizard)
		r.Delete("/", h.ResetWizard)
		r.Put("/steps/{step}", h.ApplyWizardStep)
		r.Post("/back", h.WizardBack)
		r.Get("/preview", h.PreviewWizard)
		r.Post("/submit", h.SubmitWizard)
	})

	r.Get("/i/{slug}", h.PublicPage)
	r.Get("/invite/{invitationId}/{token}", h.GuestPage)
	r.Post("/invite/{invitationId}/{token}/rsvp", h.GuestRSVP)

	if h.uploads != nil {
		prefix := strings.TrimSuffix(h.config.Uploads.PublicPrefix, "/")
		r.Handle(prefix+"/*", h.uploads)
	}

	return r
}

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			response.BadRequest(w, "Request body is required")
		} else {
			response.BadRequest(w, "Invalid JSON format")
		}
		return false
	}
	return true
}

// writeServiceError maps service errors onto the JSON error shape.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(w, ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrUnauthorizedAccess):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Unauthorized(w, "Invalid email or password")
	case errors.Is(err, domain.ErrTooManyAttempts):
		response.RateLimit(w, "Too many login attempts. Try again later.")
	default:
		logger.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		response.InternalError(w, "Internal server error")
	}
}

func parseID(r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// invitationID reads {invitation} as a numeric id.
func invitationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := parseID(r, "invitation")
	if !ok {
		response.BadRequest(w, "Invalid invitation ID")
	}
	return id, ok
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}

type successResponse struct {
	Success bool `json:"success"`
}
