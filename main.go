package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ByLCY/medalholder/config"
	"github.com/ByLCY/medalholder/logging"
	"github.com/ByLCY/medalholder/pipeline"
)

const usage = `用法: medalholder [-config 文件] [-v] <命令> [参数]

命令:
  glyphs    处理 A–Z 字形并写入字形缓存
  quote     计算宽度与价格
  compose   生成 DXF/PNG/SVG 文件
`

func main() {
	configPath := flag.String("config", "", "YAML 配置文件路径")
	verbose := flag.Bool("v", false, "输出调试日志")
	font := flag.String("font", "", "覆盖配置中的字体")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *font != "" {
		cfg.Font = *font
	}

	p, err := pipeline.New(cfg, pipeline.Options{})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	args := flag.Args()
	switch args[0] {
	case "glyphs":
		err = runGlyphs(p)
	case "quote":
		err = runQuote(p, args[1:])
	case "compose":
		err = runCompose(p, args[1:])
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s 失败: %v", args[0], err)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runGlyphs(p *pipeline.Pipeline) error {
	widths, err := p.BuildGlyphs()
	if err != nil {
		return err
	}
	fmt.Printf("已写入 %d 个字形到 %s\n", len(widths), p.Config().LettersDir)
	return nil
}

// requestFlags 注册 quote 与 compose 共用的请求参数。
func requestFlags(name string, args []string) (*pipeline.Request, error) {
	req := &pipeline.Request{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&req.Text, "text", "", "刻字内容")
	fs.StringVar(&req.Design, "design", "", "图案名称")
	fs.IntVar(&req.Tiers, "tiers", 1, "层数")
	fs.IntVar(&req.UserWidth, "width", 0, "期望宽度（整数 mm），0 表示自动")
	if name == "compose" {
		fs.StringVar(&req.ID, "id", "", "输出文件名，默认按配置命名")
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return req, nil
}

func runQuote(p *pipeline.Pipeline, args []string) error {
	req, err := requestFlags("quote", args)
	if err != nil {
		return err
	}
	q, err := p.Quote(*req)
	if err != nil {
		return err
	}
	return printJSON(q)
}

func runCompose(p *pipeline.Pipeline, args []string) error {
	req, err := requestFlags("compose", args)
	if err != nil {
		return err
	}
	q, arts, err := p.Generate(*req)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"quote": q, "artifacts": arts})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
