package alert

// https://github.com/yuwf/wordtrie

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/yuwf/wordtrie/httprequest"
	"github.com/yuwf/wordtrie/utils"
)

type feishuResp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// SendFeiShuAlert 协程池中发送
func SendFeiShuAlert(addr *AlertAddr, format string, a ...interface{}) {
	if addr == nil || len(addr.Addr) == 0 {
		return
	}
	text := fmt.Sprintf(format, a...)
	utils.Submit(func() {
		sendFeiShu(addr, text)
	})
}

// 不开启协程 等待http送达返回后 函数结束
func SendFeiShuAlert2(addr *AlertAddr, format string, a ...interface{}) {
	if addr == nil || len(addr.Addr) == 0 {
		return
	}
	sendFeiShu(addr, fmt.Sprintf(format, a...))
}

func sendFeiShu(addr *AlertAddr, text string) {
	hostname, _ := os.Hostname()
	title := fmt.Sprintf("%s(%s) %s", hostname, utils.LocalIPString(), ParamConf.Get().ServerName)
	body := genFeiShuCardData(title, addr.Secret, text, time.Now())

	// 发送本身的日志不再记录，防止循环报警
	ctx := utils.CtxSetNolog(context.TODO())
	httprequest.JsonRequest[feishuResp](ctx, "POST", addr.Addr, body, nil)
}

type feishuText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type feishuElement struct {
	Tag  string     `json:"tag"`
	Text feishuText `json:"text"`
}

type feishuCard struct {
	Config struct {
		EnableForward bool `json:"enable_forward"`
	} `json:"config"`
	Header struct {
		Template string     `json:"template"`
		Title    feishuText `json:"title"`
	} `json:"header"`
	Elements []feishuElement `json:"elements"`
}

type feishuMsg struct {
	Timestamp string     `json:"timestamp"`
	Sign      string     `json:"sign,omitempty"`
	MsgType   string     `json:"msg_type"`
	Card      feishuCard `json:"card"`
}

func genFeiShuCardData(title, secret string, text string, now time.Time) *feishuMsg {
	data := &feishuMsg{
		Timestamp: strconv.FormatInt(now.Unix(), 10),
		MsgType:   "interactive",
	}
	if len(secret) != 0 {
		data.Sign, _ = genFeiShuSign(secret, now.Unix())
	}
	data.Card.Config.EnableForward = true
	data.Card.Header.Template = "yellow"
	data.Card.Header.Title = feishuText{Tag: "plain_text", Content: title}
	data.Card.Elements = []feishuElement{
		{Tag: "div", Text: feishuText{Tag: "plain_text", Content: text}},
	}
	return data
}

// timestamp + "\n" + key 做sha256, 再进行base64 encode
func genFeiShuSign(secret string, timestamp int64) (string, error) {
	stringToSign := strconv.FormatInt(timestamp, 10) + "\n" + secret
	h := hmac.New(sha256.New, []byte(stringToSign))
	if _, err := h.Write(nil); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}
