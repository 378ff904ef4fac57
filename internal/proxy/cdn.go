package proxy

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"master-or-disaster/internal/config"
	"master-or-disaster/internal/constants"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const CDNPathPrefix = "/api/ddragon-cdn/"

// CDNProxy serves static game assets from the versioned Data Dragon CDN.
type CDNProxy struct {
	baseURL string
	version string
	client  *fasthttp.Client
}

func NewCDNProxy(cfg *config.Config, client *fasthttp.Client) *CDNProxy {
	return &CDNProxy{baseURL: cfg.DDragonBaseURL, version: cfg.DDragonVersion, client: client}
}

func (p *CDNProxy) TargetURL(assetPath string) string {
	return p.baseURL + "/" + p.version + "/" + assetPath
}

func (p *CDNProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	assetPath := SanitizePath(strings.TrimPrefix(r.URL.Path, CDNPathPrefix))
	target := p.TargetURL(escapePath(assetPath))

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := p.client.DoTimeout(req, resp, constants.ExternalAPITimeout); err != nil {
		logger.Error().Err(err).Str("path", assetPath).Msg("cdn fetch failed")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "Failed to proxy request to DDragon CDN"})
		return
	}

	contentType := upstreamContentType(resp, "")
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(assetPath))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	cacheControl := constants.DataCacheControl
	if strings.Contains(contentType, "image") {
		cacheControl = constants.ImageCacheControl
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(resp.StatusCode())
	if r.Method != http.MethodHead {
		_, _ = w.Write(resp.Body())
	}
}
