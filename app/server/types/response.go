package types

// Response 统一的响应结构，成功时 Code 为 0 ，失败时为 HTTP 状态码
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

func OK(msg string, data any) *Response {
	return &Response{
		Code: 0,
		Msg:  msg,
		Data: data,
	}
}

func Fail(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}
