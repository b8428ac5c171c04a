package server

// Command 观察端发来的控制意图，由 Tick 线程解释
type Command int

const (
	CmdNone Command = iota
	CmdPause
	CmdResume
	CmdReset // 重新开始对局（清空直方图）
	CmdRound // 结束当前回合（保留直方图）
)

// CommandMessage 入站 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"pause"}
type CommandMessage struct {
	Type string `json:"type"`
}

func parseCommand(s string) Command {
	switch s {
	case "pause":
		return CmdPause
	case "resume":
		return CmdResume
	case "reset":
		return CmdReset
	case "round":
		return CmdRound
	default:
		return CmdNone
	}
}
