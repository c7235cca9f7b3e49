package handlers

import "context"

const homePage = `<!DOCTYPE html>
<html>
<head><title>URL Shortener</title></head>
<body>
<h1>URL Shortener</h1>
<form method="post" action="/shorten">
<label for="long_url">Enter URL:</label>
<input type="url" id="long_url" name="long_url" size="60" required>
<button type="submit">Shorten</button>
</form>
</body>
</html>
`

// HomeResponse is the HTML page with the shortening form.
type HomeResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// Home serves a form that posts long_url to /shorten.
func (h *URLHandler) Home(_ context.Context, _ *struct{}) (*HomeResponse, error) {
	return &HomeResponse{
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(homePage),
	}, nil
}
