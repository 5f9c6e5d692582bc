package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vrok/squeeze/squeeze"
)

const maxSourceSize = 16 << 20

// Response is the JSON body of every reply.
type Response struct {
	Result   string   `json:"result"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

type cached struct {
	status   int
	response *Response
}

// request carries the options of one compression, after the query
// overrides were applied.
type request struct {
	opts squeeze.Options
	raw  bool
}

// CompressHandler serves compression requests. Results are remembered in an
// LRU cache keyed by the options and the source.
type CompressHandler struct {
	defaults squeeze.Options
	cache    *lru.Cache[string, cached]
}

func NewCompressHandler(defaults squeeze.Options, cacheSize int) (*CompressHandler, error) {
	cache, err := lru.New[string, cached](cacheSize)
	if err != nil {
		return nil, err
	}
	return &CompressHandler{defaults: defaults, cache: cache}, nil
}

func (h *CompressHandler) HandleCompress(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseOptions(r.URL.Query())
	if err != nil {
		h.respond(w, http.StatusBadRequest, abort("Bad request", err), req)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.respond(w, http.StatusMethodNotAllowed,
			abort("Bad request", errors.New("you must POST urlencoded JavaScript to this endpoint")), req)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSourceSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respond(w, http.StatusRequestEntityTooLarge,
				abort("Bad request", fmt.Errorf("the source exceeds %d bytes", tooLarge.Limit)), req)
			return
		}
		h.respond(w, http.StatusBadRequest, abort("Bad request", err), req)
		return
	}
	source := string(body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if source, err = url.QueryUnescape(source); err != nil {
			h.respond(w, http.StatusBadRequest, abort("Bad request", err), req)
			return
		}
	}

	status, resp := h.compress(source, req.opts)
	h.respond(w, status, resp, req)
}

// Compress runs one unit through the compressor with the handler's default
// options.
func (h *CompressHandler) Compress(source string) (int, *Response) {
	return h.compress(source, h.defaults)
}

func (h *CompressHandler) compress(source string, opts squeeze.Options) (int, *Response) {
	key := cacheKey(source, opts)
	if c, ok := h.cache.Get(key); ok {
		return c.status, c.response
	}

	reporter := &squeeze.CollectingReporter{}
	result, err := squeeze.CompressString("request.js", source, opts, reporter)

	status := http.StatusOK
	resp := &Response{
		Warnings: formatDiagnostics(reporter.Warnings()),
		Errors:   formatDiagnostics(reporter.Errors()),
	}
	switch {
	case err == nil:
		resp.Result = result.Code
	case isInputError(err):
		status = http.StatusBadRequest
		resp.Errors = []string{"Syntax error: " + err.Error()}
	default:
		log.Printf("compressor failed: %v", err)
		status = http.StatusInternalServerError
		resp.Errors = []string{"Compressor failed: " + err.Error()}
	}

	h.cache.Add(key, cached{status: status, response: resp})
	return status, resp
}

// Errors caused by the submitted source rather than the compressor.
func isInputError(err error) bool {
	var se *squeeze.SyntaxError
	return errors.As(err, &se) ||
		errors.Is(err, squeeze.ErrUnexpectedToken) ||
		errors.Is(err, squeeze.ErrUnbalancedBraces)
}

func (h *CompressHandler) parseOptions(query url.Values) (request, error) {
	req := request{opts: h.defaults}
	for key, values := range query {
		value := strings.ToLower(strings.TrimSpace(values[0]))
		switch strings.ToLower(key) {
		case "charset":
			if value != "utf-8" && value != "utf8" {
				return req, fmt.Errorf("unsupported charset %q", value)
			}
		case "output":
			switch value {
			case "json":
				req.raw = false
			case "raw":
				req.raw = true
			default:
				return req, fmt.Errorf("unknown output format %q", value)
			}
		case "type":
			switch value {
			case "js", "":
			case "css":
				return req, errors.New("CSS compression is not supported")
			default:
				return req, fmt.Errorf("unknown input type %q", value)
			}
		case "linebreak":
			n, err := strconv.Atoi(value)
			if err != nil {
				return req, fmt.Errorf("invalid line break %q", value)
			}
			req.opts.LineBreak = n
		case "semicolons":
			req.opts.PreserveAllSemiColons = value == "" || value == "preserve" || isTrue(value)
		case "munge":
			req.opts.Munge = isTrue(value)
		case "optimize":
			req.opts.DisableOptimizations = !isTrue(value)
		case "verbose":
			req.opts.Verbose = isTrue(value)
		}
	}
	return req, nil
}

func (h *CompressHandler) respond(w http.ResponseWriter, status int, resp *Response, req request) {
	if req.raw {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.WriteHeader(status)
		if status != http.StatusOK && len(resp.Errors) > 0 {
			io.WriteString(w, "Error: "+resp.Errors[0])
			return
		}
		io.WriteString(w, resp.Result)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("writing response failed: %v", err)
	}
}

func abort(message string, err error) *Response {
	return &Response{Warnings: []string{}, Errors: []string{message + ": " + err.Error()}}
}

func formatDiagnostics(diags []squeeze.Diagnostic) []string {
	out := []string{}
	for _, d := range diags {
		if d.Line > 0 {
			out = append(out, fmt.Sprintf("%d:%d:%s", d.Line, d.Column, d.Message))
		} else {
			out = append(out, d.Message)
		}
	}
	return out
}

func cacheKey(source string, opts squeeze.Options) string {
	sum := sha256.New()
	fmt.Fprintf(sum, "%+v\x00", opts)
	io.WriteString(sum, source)
	return hex.EncodeToString(sum.Sum(nil))
}

func isTrue(value string) bool {
	return value == "1" || value == "true"
}
