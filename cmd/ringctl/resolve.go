package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	ring "solitaire/domain"
	"solitaire/internal/service/promotion/application"
	"solitaire/internal/service/promotion/domain"
)

// ruleFile 是离线解析使用的规则文件
//
//	rules:
//	  - name: Spring sale
//	    design: halo
//	    percentage: "15"
//	    start_date: 2024-03-01
//	    end_date: 2024-03-31
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Name       string  `yaml:"name"`
	Design     string  `yaml:"design"`
	Metal      string  `yaml:"metal"`
	Shape      string  `yaml:"shape"`
	Percentage string  `yaml:"percentage"`
	StartDate  string  `yaml:"start_date"`
	EndDate    *string `yaml:"end_date"`
	Active     *bool   `yaml:"active"`
}

type resolveOptions struct {
	rulesPath string
	design    string
	metal     string
	shape     string
	carat     string
	at        string
	base      string
}

var resolveOpts resolveOptions

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the discount for one ring against a YAML rule file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runResolve(cmd.OutOrStdout(), resolveOpts, time.Now)
	},
}

func init() {
	f := resolveCmd.Flags()
	f.StringVar(&resolveOpts.rulesPath, "rules", "rules.yaml", "YAML rule file")
	f.StringVar(&resolveOpts.design, "design", "", "ring design")
	f.StringVar(&resolveOpts.metal, "metal", "", "metal")
	f.StringVar(&resolveOpts.shape, "shape", "", "diamond shape")
	f.StringVar(&resolveOpts.carat, "carat", "1.0", "carat weight")
	f.StringVar(&resolveOpts.at, "at", "", "evaluation time (RFC3339 or YYYY-MM-DD, default now)")
	f.StringVar(&resolveOpts.base, "base", "", "base price")
	_ = resolveCmd.MarkFlagRequired("design")
	_ = resolveCmd.MarkFlagRequired("metal")
	_ = resolveCmd.MarkFlagRequired("shape")
	_ = resolveCmd.MarkFlagRequired("base")
}

func loadRules(path string) ([]domain.DiscountRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read rules %s", path)
	}
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "parse rules %s", path)
	}
	rules := make([]domain.DiscountRule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		pct, err := decimal.NewFromString(entry.Percentage)
		if err != nil {
			return nil, errors.Wrapf(domain.ErrInvalidRule, "rule %d: percentage %q", i+1, entry.Percentage)
		}
		in := application.RuleInput{
			Name: entry.Name, Design: entry.Design, Metal: entry.Metal, Shape: entry.Shape,
			Percentage: pct, StartDate: entry.StartDate, EndDate: entry.EndDate, Active: entry.Active,
		}
		rule, err := in.ToDomain()
		if err != nil {
			return nil, errors.Wrapf(err, "rule %d", i+1)
		}
		rule.ID = int64(i + 1)
		rules = append(rules, *rule)
	}
	return rules, nil
}

func parseAt(s string, now func() time.Time) (time.Time, error) {
	if s == "" {
		return now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid --at %q", s)
	}
	return t, nil
}

func runResolve(out io.Writer, opts resolveOptions, now func() time.Time) error {
	item, err := ring.NewCatalogItem(opts.design, opts.metal, opts.shape, opts.carat)
	if err != nil {
		return err
	}
	base, err := decimal.NewFromString(opts.base)
	if err != nil {
		return errors.Errorf("invalid --base %q", opts.base)
	}
	at, err := parseAt(opts.at, now)
	if err != nil {
		return err
	}
	rules, err := loadRules(opts.rulesPath)
	if err != nil {
		return err
	}

	res := domain.Apply(item, base, at, rules)
	fmt.Fprintf(out, "item:   %s\n", item.Title())
	fmt.Fprintf(out, "at:     %s\n", at.Format(time.RFC3339))
	fmt.Fprintf(out, "rules:  %d loaded\n", len(rules))
	if res.Rule == nil {
		fmt.Fprintln(out, "rule:   none")
	} else {
		fmt.Fprintf(out, "rule:   #%d %s (%s%% off, %s)\n", res.Rule.ID, res.Rule.Name, res.Rule.Percentage.String(), res.Rule.Scope())
	}
	fmt.Fprintf(out, "base:   %s\n", res.BasePrice.StringFixed(2))
	fmt.Fprintf(out, "final:  %s\n", res.FinalPrice.StringFixed(2))
	return nil
}
