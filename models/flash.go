package models

// Типы флеш-сообщений.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash - одноразовое сообщение, показываемое на следующей странице после редиректа.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
