package expense

// FileInfo describes the processed object in the response body
type FileInfo struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
}

// ResponseBody is the JSON body returned for one pipeline invocation
type ResponseBody struct {
	Message   string    `json:"message"`
	File      *FileInfo `json:"file,omitempty"`
	Timestamp string    `json:"timestamp"`
	Success   bool      `json:"success"`
	Data      *Record   `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// Response is the full invocation response: an HTTP-shaped envelope with
// status code and headers. Caught failures travel as success:false bodies
// under status 200; status 500 is reserved for invalid event shape.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       ResponseBody      `json:"body"`
}

func responseHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
	}
}
