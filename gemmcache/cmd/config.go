package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sarchlab/gemmcache/cache"
	"github.com/sarchlab/gemmcache/gemm"
)

// Environment variables that provide defaults for the flags.
const (
	EnvCacheSize     = "GEMMCACHE_CACHE_SIZE"
	EnvLineSize      = "GEMMCACHE_LINE_SIZE"
	EnvAssociativity = "GEMMCACHE_ASSOCIATIVITY"
	EnvElementSize   = "GEMMCACHE_ELEMENT_SIZE"
	EnvPort          = "GEMMCACHE_PORT"
)

// goodHitRate is the hit rate from which results are shown in green.
const goodHitRate = 80.0

// intSetting reads an integer flag. If the flag is not given on the command
// line, the environment variable is used, then the default value.
func intSetting(
	cmd *cobra.Command,
	flagName, envName string,
	defaultValue int,
) (int, error) {
	if cmd.Flags().Changed(flagName) || envName == "" {
		return cmd.Flags().GetInt(flagName)
	}

	str, ok := os.LookupEnv(envName)
	if !ok || str == "" {
		return defaultValue, nil
	}

	v, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not an integer", envName, str)
	}

	return v, nil
}

func addGEMMFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("size", "n", 16, "Dimension of the square matrices.")
	cmd.Flags().StringP("order", "o", "ijk",
		"Loop order, a permutation of i, j, and k.")
	cmd.Flags().BoolP("blocked", "b", false, "Tile the iteration space.")
	cmd.Flags().IntP("tile", "t", 4, "Tile size of the blocked GEMM.")
}

type gemmParams struct {
	n        int
	order    gemm.LoopOrder
	blocked  bool
	tileSize int
}

func gemmParamsFromFlags(cmd *cobra.Command) (gemmParams, error) {
	p := gemmParams{}

	p.n, _ = cmd.Flags().GetInt("size")
	p.blocked, _ = cmd.Flags().GetBool("blocked")
	p.tileSize, _ = cmd.Flags().GetInt("tile")

	orderStr, _ := cmd.Flags().GetString("order")

	var err error

	p.order, err = gemm.ParseLoopOrder(orderStr)
	if err != nil {
		return p, err
	}

	return p, nil
}

func (p gemmParams) generate() (gemm.Trace, error) {
	return gemm.Generate(p.n, p.order, p.blocked, p.tileSize)
}

func addCacheFlags(cmd *cobra.Command) {
	def := cache.DefaultConfig()

	cmd.Flags().Int("cache-size", def.CacheSize,
		"Cache capacity in bytes. Default from "+EnvCacheSize+".")
	cmd.Flags().Int("line-size", def.LineSize,
		"Cache line size in bytes. Default from "+EnvLineSize+".")
	cmd.Flags().Int("associativity", def.Associativity,
		"Number of ways per set. Default from "+EnvAssociativity+".")
	cmd.Flags().Int("element-size", def.ElementSize,
		"Bytes per matrix element. Default from "+EnvElementSize+".")
	cmd.Flags().Bool("scaled", false,
		"Size the cache to the matrices, as the dashboard does.")
}

func cacheConfigFromFlags(cmd *cobra.Command, n int) (cache.Config, error) {
	c := cache.DefaultConfig()

	scaled, _ := cmd.Flags().GetBool("scaled")
	if scaled {
		c = cache.ScaledConfig(n)
	}

	settings := []struct {
		flag  string
		env   string
		value *int
	}{
		{"cache-size", EnvCacheSize, &c.CacheSize},
		{"line-size", EnvLineSize, &c.LineSize},
		{"associativity", EnvAssociativity, &c.Associativity},
		{"element-size", EnvElementSize, &c.ElementSize},
	}

	for _, s := range settings {
		if scaled && s.flag != "element-size" && !cmd.Flags().Changed(s.flag) {
			continue
		}

		v, err := intSetting(cmd, s.flag, s.env, *s.value)
		if err != nil {
			return c, err
		}

		*s.value = v
	}

	err := c.Validate()
	if err != nil {
		return c, err
	}

	return c, nil
}

func parseOrders(str string) ([]gemm.LoopOrder, error) {
	if str == "" {
		return gemm.AllLoopOrders(), nil
	}

	var orders []gemm.LoopOrder

	for _, s := range strings.Split(str, ",") {
		o, err := gemm.ParseLoopOrder(s)
		if err != nil {
			return nil, err
		}

		orders = append(orders, o)
	}

	return orders, nil
}

func hitRateString(rate float64) string {
	if rate >= goodHitRate {
		return color.GreenString("%6.2f%%", rate)
	}

	return color.RedString("%6.2f%%", rate)
}
