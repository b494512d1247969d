package utils

import (
	"errors"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

func BuildSuccessResponse(w http.ResponseWriter, code int, message string, data interface{}) {
	response := responses.ResponseDTO{
		Success: true,
		Message: message,
		Data:    data,
	}
	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

// BuildListResponse writes a 200 envelope for a collection along with its size.
func BuildListResponse(w http.ResponseWriter, message string, items interface{}, count int) {
	response := responses.ResponseDTO{
		Success: true,
		Message: message,
		Data:    items,
		Meta:    &responses.ListMeta{Count: count},
	}
	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(constvars.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// BuildErrorResponse logs err and writes the error envelope. Dev details are written
// only when exposeDetails is set.
func BuildErrorResponse(log *zap.Logger, w http.ResponseWriter, err error, exposeDetails bool) {
	code := constvars.StatusInternalServerError
	clientMessage := constvars.ErrClientSomethingWrongWithApplication

	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		code = customErr.StatusCode
		clientMessage = customErr.ClientMessage
		location := map[string]interface{}{
			"file":          customErr.Location.File,
			"line":          customErr.Location.Line,
			"function_name": customErr.Location.FunctionName,
		}
		if code >= constvars.StatusInternalServerError {
			log.Error(customErr.DevMessage, zap.Any("location", location))
		} else {
			log.Warn(customErr.DevMessage, zap.Any("location", location))
		}
	} else {
		log.Error(err.Error())
	}

	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(code)
	response := exceptions.CustomError{
		StatusCode:    code,
		Success:       false,
		ClientMessage: clientMessage,
	}

	if customErr != nil && exposeDetails {
		response.DevMessage = customErr.DevMessage
		response.Location = customErr.Location
	}
	json.NewEncoder(w).Encode(response)
}

// BuildFileResponse streams a binary attachment such as a PDF or a bank slip.
func BuildFileResponse(w http.ResponseWriter, contentType, fileName string, data []byte) {
	if contentType == "" {
		contentType = constvars.MIMEOctetStream
	}
	w.Header().Set(constvars.HeaderContentType, contentType)
	w.Header().Set(constvars.HeaderContentDisposition, "attachment; filename=\""+fileName+"\"")
	w.WriteHeader(constvars.StatusOK)
	w.Write(data)
}
