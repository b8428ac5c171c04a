package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
)

const msgpackContentType = "application/x-msgpack"

// lookupEngagement 解析 ?engagement=，未找到时写 404
func lookupEngagement(w http.ResponseWriter, r *http.Request) (*Engagement, bool) {
	id := r.URL.Query().Get("engagement")
	e, ok := GetEngagementManager().Get(id)
	if !ok {
		http.Error(w, "unknown engagement", http.StatusNotFound)
		return nil, false
	}
	return e, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type configView struct {
	Engagement     string  `json:"engagement"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	TicksPerSecond int     `json:"ticksPerSecond"`
	InitialEnergy  float64 `json:"initialEnergy"`
	FireInterval   int     `json:"fireInterval"`
	MinPower       float64 `json:"minPower"`
	MaxPower       float64 `json:"maxPower"`
	Aim            AimMode `json:"aim"`
}

func viewConfig(id string, c Config) configView {
	return configView{
		Engagement:     id,
		Width:          c.Width,
		Height:         c.Height,
		TicksPerSecond: c.TicksPerSecond,
		InitialEnergy:  c.InitialEnergy,
		FireInterval:   c.FireInterval,
		MinPower:       c.MinPower,
		MaxPower:       c.MaxPower,
		Aim:            c.Aim,
	}
}

// HandleAdminConfig 提供对局配置的读取与更新（热更新开火参数）
// GET /admin/config?engagement=eng_xxx  返回当前配置
// POST /admin/config?engagement=eng_xxx 以 JSON 载荷更新部分字段
func HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	e, ok := lookupEngagement(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, viewConfig(e.ID, e.Config()))
	case http.MethodPost:
		var patch ConfigPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		cfg, err := e.UpdateConfig(patch)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		Log.Infof("config updated: engagement=%s fireInterval=%d power=[%.2f,%.2f] aim=%s",
			e.ID, cfg.FireInterval, cfg.MinPower, cfg.MaxPower, cfg.Aim)
		writeJSON(w, http.StatusOK, viewConfig(e.ID, cfg))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定对局的运行指标
// GET /metrics?engagement=eng_xxx
func HandleMetrics(w http.ResponseWriter, r *http.Request) {
	e, ok := lookupEngagement(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"engagement": e.ID,
		"tick":       e.Tick(),
		"metrics":    e.Metrics().Snapshot(),
	})
}

// HandleStats 危险直方图的显式导出/导入（对局边界的持久化由调用方决定）
// GET  /admin/stats?engagement=eng_xxx[&format=msgpack]
// POST /admin/stats?engagement=eng_xxx  body 为 msgpack 导出结果
func HandleStats(w http.ResponseWriter, r *http.Request) {
	e, ok := lookupEngagement(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("format") == "msgpack" {
			b, err := e.ExportHistogram()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", msgpackContentType)
			_, _ = w.Write(b)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"engagement": e.ID, "bins": e.Histogram()})
	case http.MethodPost:
		b, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		if err := e.ImportHistogram(b); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		Log.Infof("histogram imported: engagement=%s", e.ID)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleEngagements 对局列表 / 新建 / 删除 / 重置
// GET    /admin/engagements
// POST   /admin/engagements                       新建对局
// POST   /admin/engagements?engagement=..&op=reset 重置（清空直方图）
// DELETE /admin/engagements?engagement=..         停止并移除
func HandleEngagements(w http.ResponseWriter, r *http.Request) {
	rm := GetEngagementManager()
	id := r.URL.Query().Get("engagement")
	switch r.Method {
	case http.MethodGet:
		ids := rm.List()
		sort.Strings(ids)
		writeJSON(w, http.StatusOK, map[string]any{"engagements": ids})
	case http.MethodPost:
		if id == "" {
			e := rm.Create()
			writeJSON(w, http.StatusCreated, map[string]any{"engagement": e.ID})
			return
		}
		e, ok := rm.Get(id)
		if !ok {
			http.Error(w, "unknown engagement", http.StatusNotFound)
			return
		}
		switch r.URL.Query().Get("op") {
		case "reset":
			e.Reset()
		case "round":
			e.OnCommand(CmdRound)
		default:
			http.Error(w, "unknown op", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case http.MethodDelete:
		if id == "" {
			http.Error(w, "missing engagement", http.StatusBadRequest)
			return
		}
		if err := rm.Remove(id); err != nil {
			Log.Warnf("remove engagement %s: %v", id, err)
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
