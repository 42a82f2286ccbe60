package models

// 响应码定义
const (
	// 成功
	CodeSuccess = 0

	// 客户端错误 (1000-1999)
	CodeInvalidParams = 1000 // 无效的参数
	CodeMissingParams = 1001 // 缺少必要参数

	// 服务端错误 (2000-2999)
	CodeServerError        = 2000 // 服务器内部错误
	CodeSearchError        = 2001 // 搜索服务错误
	CodeLLMError           = 2002 // LLM调用错误
	CodeExtractError       = 2003 // 产品信息提取错误
	CodeThirdPartyAPIError = 2005 // 第三方API错误
)

// 错误码对应的消息
var CodeMessages = map[int]string{
	CodeSuccess:            "success",
	CodeInvalidParams:      "无效的参数",
	CodeMissingParams:      "缺少必要参数",
	CodeServerError:        "服务器内部错误",
	CodeSearchError:        "搜索服务错误",
	CodeLLMError:           "LLM调用错误",
	CodeExtractError:       "产品信息提取错误",
	CodeThirdPartyAPIError: "第三方API错误",
}

// APIResponse 通用API响应
type APIResponse struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Code:    CodeSuccess,
		Message: CodeMessages[CodeSuccess],
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, data interface{}) APIResponse {
	message, exists := CodeMessages[code]
	if !exists {
		message = "未知错误"
	}
	return APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewCustomErrorResponse 创建自定义错误消息的响应
func NewCustomErrorResponse(code int, message string, data interface{}) APIResponse {
	return APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}
