// internal/game/errors.go
package game

// ErrorCode is a stable identifier carried in action acks when a request is
// rejected. Rejection never mutates room state.
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeRoomNotFound     ErrorCode = "room_not_found"
	CodeRoomFull         ErrorCode = "room_full"
	CodeWrongPhase       ErrorCode = "wrong_phase"
	CodeNotHost          ErrorCode = "not_host"
	CodeBadPassword      ErrorCode = "bad_password"
	CodePlayerNotFound   ErrorCode = "player_not_found"
	CodeBadToken         ErrorCode = "bad_token"
	CodeNotYourTurn      ErrorCode = "not_your_turn"
	CodeCardNotInHand    ErrorCode = "card_not_in_hand"
	CodeIllegalCard      ErrorCode = "illegal_card"
	CodeMissingColor     ErrorCode = "missing_color"
	CodeInvalidColor     ErrorCode = "invalid_color"
	CodeUnoWindowClosed  ErrorCode = "uno_window_closed"
	CodeUnoAlreadyCalled ErrorCode = "uno_already_called"
	CodeCannotCatchSelf  ErrorCode = "cannot_catch_self"
	CodeStaleTurn        ErrorCode = "stale_turn"
	CodeGameOver         ErrorCode = "game_over"
	CodeTooFewPlayers    ErrorCode = "too_few_players"
)

// RuleError wraps an ErrorCode as a Go error so engine entry points can
// return it directly.
type RuleError struct {
	Code ErrorCode
}

func (e *RuleError) Error() string { return string(e.Code) }

func ruleErr(code ErrorCode) *RuleError { return &RuleError{Code: code} }

// CodeOf extracts the ErrorCode from an error returned by the engine,
// defaulting to bad_request for anything unrecognized.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if re, ok := err.(*RuleError); ok {
		return re.Code
	}
	return CodeBadRequest
}
