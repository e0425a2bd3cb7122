package service

// https://github.com/yuwf/wordtrie

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/yuwf/wordtrie/dictionary"
	"github.com/yuwf/wordtrie/filter"
	"github.com/yuwf/wordtrie/ginserver"
	"github.com/yuwf/wordtrie/metrics"
)

// 错误码
const (
	ErrCodeOK           = 0
	ErrCodeUnknownGroup = 2
)

type ScanReq struct {
	Text  string `json:"text" binding:"required"`
	Group string `json:"group,omitempty"` // 为空检查所有组
}

type ScanResp struct {
	ErrCode int                  `json:"errCode"`
	ErrDesc string               `json:"errDesc,omitempty"`
	Groups  []*filter.GroupMatch `json:"groups"`
}

type ContainsReq struct {
	Text string `json:"text" binding:"required"`
}

type ContainsResp struct {
	Hit bool `json:"hit"`
}

type StatsResp struct {
	Groups map[string]dictionary.Stats `json:"groups"`
}

// Service 对外的http接口
type Service struct {
	filter *filter.Filter
}

func New(f *filter.Filter) *Service {
	return &Service{filter: f}
}

// Register 注册路由
func (s *Service) Register(gs *ginserver.GinServer) error {
	if err := gs.RegJsonHandler(http.MethodPost, "/scan", s.scan); err != nil {
		return err
	}
	if err := gs.RegJsonHandler(http.MethodPost, "/contains", s.contains); err != nil {
		return err
	}
	if err := gs.RegJsonHandler(http.MethodGet, "/stats", s.stats); err != nil {
		return err
	}
	return gs.RegHandler(http.MethodGet, "/metrics", func(c *gin.Context) {
		metrics.Handler().ServeHTTP(c.Writer, c.Request)
	})
}

func (s *Service) scan(ctx context.Context, c *gin.Context, req *ScanReq, resp *ScanResp) {
	resp.Groups = []*filter.GroupMatch{}
	if strings.TrimSpace(req.Group) == "" {
		if results := s.filter.Check(ctx, req.Text); results != nil {
			resp.Groups = results
		}
		return
	}
	gm, err := s.filter.CheckGroup(ctx, req.Group, req.Text)
	if err != nil {
		if errors.Is(err, filter.ErrUnknownGroup) {
			resp.ErrCode = ErrCodeUnknownGroup
		}
		resp.ErrDesc = err.Error()
		return
	}
	if len(gm.Matches) > 0 {
		resp.Groups = append(resp.Groups, gm)
	}
}

func (s *Service) contains(ctx context.Context, c *gin.Context, req *ContainsReq, resp *ContainsResp) {
	resp.Hit = s.filter.Contains(ctx, req.Text)
}

func (s *Service) stats(ctx context.Context, c *gin.Context, resp *StatsResp) {
	resp.Groups = s.filter.Stats()
}
