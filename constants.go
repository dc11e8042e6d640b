package main

type Mode int

const (
	ModeStartup Mode = iota
	ModeNormal
	ModeTextInput
	ModeFileInput
	ModeConfirm
)

type InputPurpose int

const (
	InputNewNode InputPurpose = iota
	InputNewChild
	InputEditNode
	InputTitle
)

type FileOperation int

const (
	FileOpExportPNG FileOperation = iota
	FileOpExportTXT
	FileOpExportJSON
	FileOpImport
)

type ConfirmAction int

const (
	ConfirmDeleteSelection ConfirmAction = iota
	ConfirmQuit
	ConfirmCloseBuffer
	ConfirmDeleteMap
)

const (
	panStep     = 2
	fastPanStep = 8
	fitPadding  = 2
)
