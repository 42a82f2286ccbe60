package utils

import (
	"encoding/json"
	"net/http"

	"intent_finder/models"
)

// WriteFormattedJSON 格式化JSON输出，使其更易读
func WriteFormattedJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ") // 使用4个空格缩进
	encoder.Encode(data)
}

// WriteSuccessResponse 写入成功响应
func WriteSuccessResponse(w http.ResponseWriter, data interface{}) {
	WriteFormattedJSON(w, models.NewSuccessResponse(data))
}

// WriteErrorResponse 写入错误响应
func WriteErrorResponse(w http.ResponseWriter, code int, data interface{}) {
	WriteFormattedJSON(w, models.NewErrorResponse(code, data))
}

// WriteCustomErrorResponse 写入自定义错误消息的响应
func WriteCustomErrorResponse(w http.ResponseWriter, code int, message string, data interface{}) {
	WriteFormattedJSON(w, models.NewCustomErrorResponse(code, message, data))
}

// DecodeJSONBody 解析请求体JSON，失败时写入参数错误响应
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	return true
}

// RequireField 校验必填字符串参数
func RequireField(w http.ResponseWriter, name, value string) bool {
	if value == "" {
		WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{
			"param": name,
		})
		return false
	}
	return true
}
