package utils

// https://github.com/yuwf/wordtrie

import (
	"net"
	"sync"

	"github.com/rs/zerolog/log"
)

// LocalIP 优先返回全局单播地址，没有就返回回环地址
func LocalIP() (net.IP, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.IsGlobalUnicast() {
			return ipnet.IP, nil
		}
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.IsLoopback() {
			return ipnet.IP, nil
		}
	}
	return nil, nil
}

var getIpOnce sync.Once
var localIp string

// LocalIPString 只获取一次
func LocalIPString() string {
	getIpOnce.Do(func() {
		ip, err := LocalIP()
		if err != nil {
			log.Error().Err(err).Msg("LocalIPString error")
			return
		}
		if ip == nil {
			log.Error().Msg("LocalIPString empty")
			return
		}
		localIp = ip.String()
	})
	return localIp
}
