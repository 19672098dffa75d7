package mock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

const maxFormMemory = 10 << 20

// ApiMock is a recording HTTP server standing in for third-party APIs such as
// the image host. Responses are configured per method and path; paths may use
// "*" for a single segment.
type ApiMock struct {
	mu                    sync.Mutex
	server                *httptest.Server
	requestsReceived      map[string][]map[string]any
	headersReceived       map[string][]map[string]string
	responseMap           map[string]map[int]any
	responseStatus        map[string]map[int]int
	defaultResponseMap    map[string]any
	defaultResponseStatus map[string]int
}

func NewApiServer() *ApiMock {
	a := &ApiMock{}
	a.Clear()
	return a
}

func (a *ApiMock) Start() {
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
}

func (a *ApiMock) Close() {
	if a.server != nil {
		a.server.Close()
	}
}

func (a *ApiMock) GetUrl() string {
	if a.server == nil {
		return ""
	}
	return a.server.URL
}

// Clear forgets every configured response and recorded request.
func (a *ApiMock) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requestsReceived = map[string][]map[string]any{}
	a.headersReceived = map[string][]map[string]string{}
	a.responseMap = map[string]map[int]any{}
	a.responseStatus = map[string]map[int]int{}
	a.defaultResponseMap = map[string]any{}
	a.defaultResponseStatus = map[string]int{}
}

// SetResponse configures the answer to the index-th call of method+path.
// An index of -1 sets the default for every call.
func (a *ApiMock) SetResponse(index int, method, path string, status int, response map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := method + path
	if index == -1 {
		a.defaultResponseStatus[key] = status
		a.defaultResponseMap[key] = response
		return
	}

	if a.responseMap[key] == nil {
		a.responseMap[key] = map[int]any{}
		a.responseStatus[key] = map[int]int{}
	}
	a.responseMap[key][index] = response
	a.responseStatus[key][index] = status
}

func (a *ApiMock) RequestCount(method, path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	for key, requests := range a.requestsReceived {
		if a.keyMatches(key, method, path) {
			count += len(requests)
		}
	}
	return count
}

func (a *ApiMock) GetRequestBody(method, path string, index int) map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, requests := range a.requestsReceived {
		if a.keyMatches(key, method, path) && index < len(requests) {
			return requests[index]
		}
	}
	return nil
}

func (a *ApiMock) GetRequestHeaders(method, path string, index int) map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, headers := range a.headersReceived {
		if a.keyMatches(key, method, path) && index < len(headers) {
			return headers[index]
		}
	}
	return nil
}

func (a *ApiMock) handle(w http.ResponseWriter, r *http.Request) {
	request := readRequest(r)

	a.mu.Lock()
	key := r.Method + r.URL.Path
	index := len(a.requestsReceived[key])
	a.requestsReceived[key] = append(a.requestsReceived[key], request)

	headers := map[string]string{}
	for name, value := range r.Header {
		headers[name] = value[0]
	}
	a.headersReceived[key] = append(a.headersReceived[key], headers)

	status, response := a.responseFor(r.Method, r.URL.Path, index)
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// readRequest flattens a JSON, form or multipart body into a map. Uploaded
// files are recorded by name and size.
func readRequest(r *http.Request) map[string]any {
	request := map[string]any{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return request
		}
		for name, values := range r.MultipartForm.Value {
			request[name] = values[0]
		}
		for name, files := range r.MultipartForm.File {
			request[name] = map[string]any{
				"filename": files[0].Filename,
				"size":     files[0].Size,
			}
		}
		return request
	}

	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &request)
	if request == nil {
		request = map[string]any{}
	}
	return request
}

func (a *ApiMock) responseFor(method, path string, index int) (int, any) {
	for key, responses := range a.responseMap {
		if !a.keyMatches(key, method, path) {
			continue
		}
		if response, ok := responses[index]; ok {
			return statusOrOK(a.responseStatus[key][index]), response
		}
	}

	for key, response := range a.defaultResponseMap {
		if a.keyMatches(key, method, path) {
			return statusOrOK(a.defaultResponseStatus[key]), response
		}
	}

	return http.StatusOK, map[string]any{}
}

func statusOrOK(status int) int {
	// WriteHeader panics on 0
	if status == 0 {
		return http.StatusOK
	}
	return status
}

func (a *ApiMock) keyMatches(key, method, path string) bool {
	if !strings.HasPrefix(key, method) {
		return false
	}
	return matchPath(strings.TrimPrefix(key, method), path)
}

func matchPath(pattern string, path string) bool {
	if pattern == path {
		return true
	}

	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(path, "/")

	if len(patternParts) != len(pathParts) {
		return false
	}

	for i := range patternParts {
		if patternParts[i] != "*" && pathParts[i] != "*" && patternParts[i] != pathParts[i] {
			return false
		}
	}

	return true
}
