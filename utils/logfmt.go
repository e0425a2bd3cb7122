package utils

// https://github.com/yuwf/wordtrie

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// 打印http的body，limit>0时超出部分截断，只保留首尾
func LogFmtHttpBody(l *zerolog.Event, logkey string, header http.Header, data []byte, limit int) *zerolog.Event {
	contentType := header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if limit > 0 && len(data) > limit {
			return l.Str(logkey, truncated(BytesToString(data), limit))
		}
		if json.Valid(data) {
			return l.RawJSON(logkey, data)
		}
		return l.Bytes(logkey, data)
	} else if strings.Contains(contentType, "text/") {
		if header.Get("Content-Encoding") == "gzip" {
			if reader, err := gzip.NewReader(bytes.NewReader(data)); err == nil {
				if all, err := io.ReadAll(reader); err == nil {
					data = all
				}
			}
		}
		return l.Str(logkey, truncated(string(data), limit))
	}
	return l.Int(logkey+"size", len(data))
}

// 打印结构体，json格式化
func LogFmtHttpInterface(l *zerolog.Event, logkey string, body interface{}, limit int) *zerolog.Event {
	data, err := json.Marshal(body)
	if err != nil {
		return l.Interface(logkey, body)
	}
	if limit > 0 && len(data) > limit {
		return l.Str(logkey, truncated(BytesToString(data), limit))
	}
	return l.RawJSON(logkey, data)
}

func truncated(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return fmt.Sprint(s[0:limit/2], "   ...(", len(s), ")...   ", s[len(s)-limit/2:])
}
