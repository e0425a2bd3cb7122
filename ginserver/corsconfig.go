package ginserver

// https://github.com/yuwf/wordtrie

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yuwf/wordtrie/utils"
)

// 跨域控制配置
type CorsConfig struct {
	AllowOrigin      []string `json:"alloworigin,omitempty"`      // Access-Control-Allow-Origin 支持?*通配符
	AllowMethods     []string `json:"allowmethods,omitempty"`     // Access-Control-Allow-Methods
	AllowHeaders     []string `json:"allowheaders,omitempty"`     // Access-Control-Allow-Headers
	MaxAge           int      `json:"maxage,omitempty"`           // Access-Control-Max-Age 秒
	AllowCredentials bool     `json:"allowcredentials,omitempty"` // Access-Control-Allow-Credentials
}

func defaultCorsOptions() *CorsConfig {
	return &CorsConfig{
		AllowOrigin:  []string{"*"},
		AllowMethods: []string{http.MethodHead, http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"*"},
		MaxAge:       86400,
	}
}

func (c *CorsConfig) Normalize() {
	for i, h := range c.AllowHeaders {
		c.AllowHeaders[i] = http.CanonicalHeaderKey(h)
	}
	for i, m := range c.AllowMethods {
		c.AllowMethods[i] = strings.ToUpper(m)
	}
}

func (c *CorsConfig) isMethodAllowed(method string) bool {
	method = strings.ToUpper(method)
	if method == http.MethodOptions {
		return true
	}
	for _, m := range c.AllowMethods {
		if m == method {
			return true
		}
	}
	return false
}

// 返回回复头中的Origin，空表示不允许
func (c *CorsConfig) allowOrigin(origin string) string {
	for _, o := range c.AllowOrigin {
		if o == "*" {
			return "*"
		}
		if utils.IsMatch(strings.ToLower(o), strings.ToLower(origin)) {
			return origin
		}
	}
	return ""
}

func cors(c *gin.Context) {
	cors := ParamConf.Get().Cors

	if !cors.isMethodAllowed(c.Request.Method) {
		c.AbortWithStatus(http.StatusMethodNotAllowed)
		return
	}

	// 非跨域请求不处理
	origin := c.Request.Header.Get("Origin")
	if origin == "" {
		return
	}
	allow := cors.allowOrigin(origin)
	if allow == "" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	c.Header("Access-Control-Allow-Origin", allow)
	if cors.AllowCredentials {
		c.Header("Access-Control-Allow-Credentials", "true")
	}

	// 预检请求
	if c.Request.Method == http.MethodOptions {
		c.Header("Access-Control-Allow-Methods", strings.Join(cors.AllowMethods, ","))
		if len(cors.AllowHeaders) > 0 {
			c.Header("Access-Control-Allow-Headers", strings.Join(cors.AllowHeaders, ","))
		} else if reqHeader := c.Request.Header.Get("Access-Control-Request-Headers"); len(reqHeader) > 0 {
			c.Header("Access-Control-Allow-Headers", reqHeader)
		}
		if cors.MaxAge > 0 {
			c.Header("Access-Control-Max-Age", strconv.Itoa(cors.MaxAge))
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}
