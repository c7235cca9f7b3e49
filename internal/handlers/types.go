package handlers

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		LongURL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"long_url,omitempty"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     struct {
		Code     string `doc:"The short code"     example:"aZ3kP9xQ"                           json:"code"`
		ShortURL string `doc:"The full short URL" example:"http://localhost:8888/aZ3kP9xQ"     json:"short_url"`
		LongURL  string `doc:"The original URL"   example:"https://example.com/very/long/path" json:"long_url"`
	}
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"aZ3kP9xQ" path:"code"`
}

// RedirectResponse redirects the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `doc:"The original URL" header:"Location"`
}
