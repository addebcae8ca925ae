package callback

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/iksnae/strava-export/internal"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Exchanger turns an authorization code into a token grant
type Exchanger interface {
	AuthCodeURL(state string) string
	Authorize(ctx context.Context, code string) (*internal.TokenGrant, error)
}

// Server hosts the local authorization bootstrap: a start page linking the
// authorization URL and the redirect endpoint that exchanges the code.
type Server struct {
	// OpenBrowser opens a URL for the user; errors are ignored
	OpenBrowser func(url string) error

	echo      *echo.Echo
	exchanger Exchanger
	addr      string
	grants    chan *internal.TokenGrant
	openOnce  sync.Once
}

// RedirectURL is the callback registered with the authorization request for port
func RedirectURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/exchange_token", port)
}

// NewServer builds a callback server listening on addr (host:port)
func NewServer(exchanger Exchanger, addr string) *Server {
	s := &Server{
		OpenBrowser: OpenBrowser,
		exchanger:   exchanger,
		addr:        addr,
		grants:      make(chan *internal.TokenGrant, 1),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// the redirect URI carries the one-time code; log the path only
			internal.LogDebug("%s %s -> %d", v.Method, c.Path(), v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/", s.handleIndex)
	e.GET("/exchange_token", s.handleExchange)

	s.echo = e
	return s
}

// Handler exposes the routes for use with an external listener
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Grants delivers successful exchanges; only the first is buffered
func (s *Server) Grants() <-chan *internal.TokenGrant {
	return s.grants
}

// Addr returns the bound listener address once the server is running
func (s *Server) Addr() net.Addr {
	return s.echo.ListenerAddr()
}

// Run serves until the first successful exchange, then shuts the listener down.
// Failed exchanges are answered with an error page and the server keeps waiting.
func (s *Server) Run(ctx context.Context) (*internal.TokenGrant, error) {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			internal.LogWarn("Callback server shutdown: %v", err)
		}
	}()

	select {
	case grant := <-s.grants:
		return grant, nil
	case err := <-errCh:
		return nil, fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Server) handleIndex(c echo.Context) error {
	authURL := s.exchanger.AuthCodeURL("")
	escaped := html.EscapeString(authURL)

	s.openOnce.Do(func() {
		if s.OpenBrowser != nil {
			if err := s.OpenBrowser(authURL); err != nil {
				internal.LogDebug("Could not open browser: %v", err)
			}
		}
	})

	return c.HTML(http.StatusOK, fmt.Sprintf(`<h2>Strava OAuth</h2>
<p>Opening Strava authorization…</p>
<p>If it didn't open, click: <a href="%s">%s</a></p>`, escaped, escaped))
}

func (s *Server) handleExchange(c echo.Context) error {
	if authErr := c.QueryParam("error"); authErr != "" {
		return c.String(http.StatusBadRequest, "Authorization error: "+authErr)
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.String(http.StatusBadRequest, "Missing code query param.")
	}

	grant, err := s.exchanger.Authorize(c.Request().Context(), code)
	if err != nil {
		internal.LogError("Token exchange failed: %v", err)
		return c.String(http.StatusInternalServerError, "Token exchange failed: "+exchangeMessage(err))
	}
	grant.Scope = c.QueryParam("scope")

	select {
	case s.grants <- grant:
	default:
		internal.LogWarn("Authorization already completed; ignoring additional grant")
	}

	return c.HTML(http.StatusOK, `<h2>✅ Authorized</h2>
<p>Tokens printed to your terminal.</p>
<p>You can close this tab.</p>`)
}

func exchangeMessage(err error) string {
	var authErr *internal.AuthError
	if errors.As(err, &authErr) && authErr.Payload != "" {
		return authErr.Payload
	}
	return err.Error()
}
