package api

import (
	"net/http"

	"github.com/ayusman/poselens/internal/expression"
)

type emotionStyle struct {
	Emotion expression.Emotion `json:"emotion"`
	expression.Style
}

type listStylesResponse struct {
	Styles []emotionStyle `json:"styles"`
}

// HandleStyles serves the emotion display table in classifier order.
func HandleStyles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := listStylesResponse{Styles: make([]emotionStyle, 0, len(expression.Emotions))}
	for _, e := range expression.Emotions {
		response.Styles = append(response.Styles, emotionStyle{Emotion: e, Style: expression.Display(e)})
	}

	writeJSON(w, http.StatusOK, response)
}
