package model

import (
	"fmt"
	"sort"
	"strings"
)

// Standard is a compliance framework an assessment is audited against.
// The value is the display name sent to the generation backend.
type Standard string

// Supported compliance standards.
const (
	// AI and emerging technology.
	StandardNISTAIRMF Standard = "NIST AI RMF 1.0 (Generative AI)"
	StandardISO42001  Standard = "ISO/IEC 42001:2023 (AI Management)"
	StandardEUAIAct   Standard = "EU AI Act (High-Risk Categories)"
	StandardOWASPLLM  Standard = "OWASP Top 10 for LLMs"

	// General and cloud security.
	StandardSOC2          Standard = "SOC2 Type II (2024)"
	StandardISO27001      Standard = "ISO/IEC 27001:2022"
	StandardCISV8         Standard = "CIS Critical Security Controls v8"
	StandardCISBenchmarks Standard = "CIS Benchmarks (Platform Specific)"
	StandardCSACCM        Standard = "CSA Cloud Controls Matrix v4"

	// NIST and US government.
	StandardNISTCSF     Standard = "NIST CSF 2.0"
	StandardNIST80053   Standard = "NIST SP 800-53 r5"
	StandardNIST800171  Standard = "NIST SP 800-171 r2"
	StandardFedRAMPMod  Standard = "FedRAMP Moderate"
	StandardFedRAMPHigh Standard = "FedRAMP High"
	StandardCMMCL2      Standard = "CMMC 2.0 (Level 2)"
	StandardDoDIL5      Standard = "DoD Impact Level 5 (SRG)"

	// Finance and payments.
	StandardPCIDSS    Standard = "PCI-DSS v4.0.1"
	StandardFINRA     Standard = "FINRA Cybersecurity Checklists"
	StandardGLBA      Standard = "GLBA (Safeguards Rule)"
	StandardSOX       Standard = "Sarbanes-Oxley (SOX)"
	StandardNYDFS500  Standard = "NYDFS 23 NYCRR 500"
	StandardSWIFTCSCF Standard = "SWIFT CSCF v2024"

	// Healthcare and pharma.
	StandardHIPAA   Standard = "HIPAA Security Rule"
	StandardHITRUST Standard = "HITRUST CSF v11"
	StandardGxP     Standard = "GxP (FDA 21 CFR Part 11)"
	StandardHDS     Standard = "HDS (France Healthcare)"

	// Privacy.
	StandardGDPR Standard = "GDPR (EU)"
	StandardCCPA Standard = "CCPA/CPRA (California)"
	StandardLGPD Standard = "LGPD (Brazil)"
	StandardPIPL Standard = "PIPL (China)"

	// Critical infrastructure and specialized.
	StandardNERCCIP  Standard = "NERC CIP-013 (Supply Chain)"
	StandardTISAX    Standard = "TISAX (Automotive)"
	StandardIEC62443 Standard = "IEC_62443 (Industrial/SCADA)"
	StandardFERPA    Standard = "FERPA (Education)"
	StandardCustom   Standard = "Custom / Best Practice Assessment"
)

// standardKeys maps the short keys accepted on the command line and in
// configuration files to standards.
var standardKeys = map[string]Standard{
	"nist-ai-rmf":    StandardNISTAIRMF,
	"iso-42001":      StandardISO42001,
	"eu-ai-act":      StandardEUAIAct,
	"owasp-llm":      StandardOWASPLLM,
	"soc2":           StandardSOC2,
	"iso-27001":      StandardISO27001,
	"cis-v8":         StandardCISV8,
	"cis-benchmarks": StandardCISBenchmarks,
	"csa-ccm":        StandardCSACCM,
	"nist-csf":       StandardNISTCSF,
	"nist-800-53":    StandardNIST80053,
	"nist-800-171":   StandardNIST800171,
	"fedramp-mod":    StandardFedRAMPMod,
	"fedramp-high":   StandardFedRAMPHigh,
	"cmmc-l2":        StandardCMMCL2,
	"dod-il5":        StandardDoDIL5,
	"pci-dss":        StandardPCIDSS,
	"finra":          StandardFINRA,
	"glba":           StandardGLBA,
	"sox":            StandardSOX,
	"nydfs-500":      StandardNYDFS500,
	"swift-cscf":     StandardSWIFTCSCF,
	"hipaa":          StandardHIPAA,
	"hitrust":        StandardHITRUST,
	"gxp":            StandardGxP,
	"hds":            StandardHDS,
	"gdpr":           StandardGDPR,
	"ccpa":           StandardCCPA,
	"lgpd":           StandardLGPD,
	"pipl":           StandardPIPL,
	"nerc-cip":       StandardNERCCIP,
	"tisax":          StandardTISAX,
	"iec-62443":      StandardIEC62443,
	"ferpa":          StandardFERPA,
	"custom":         StandardCustom,
}

// ParseStandard resolves a standard from its short key ("soc2", "pci-dss")
// or its full display name. Keys are case-insensitive and "_" is accepted
// in place of "-".
func ParseStandard(s string) (Standard, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if std, ok := standardKeys[key]; ok {
		return std, nil
	}
	for _, std := range standardKeys {
		if strings.EqualFold(string(std), strings.TrimSpace(s)) {
			return std, nil
		}
	}
	return "", fmt.Errorf("unknown compliance standard %q", s)
}

// ParseStandards resolves every entry of keys, stopping on the first error.
func ParseStandards(keys []string) ([]Standard, error) {
	out := make([]Standard, 0, len(keys))
	for _, k := range keys {
		std, err := ParseStandard(k)
		if err != nil {
			return nil, err
		}
		out = append(out, std)
	}
	return out, nil
}

// StandardKeys returns every accepted short key in sorted order.
func StandardKeys() []string {
	keys := make([]string, 0, len(standardKeys))
	for k := range standardKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// JoinStandards renders standards as a comma separated list.
func JoinStandards(standards []Standard) string {
	names := make([]string, len(standards))
	for i, s := range standards {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Region groups the standards that apply in a jurisdiction.
type Region string

// Supported regions.
const (
	RegionAll    Region = "All Regions"
	RegionUS     Region = "United States"
	RegionEU     Region = "Europe (EU)"
	RegionGlobal Region = "Global / International"
	RegionAPAC   Region = "Asia Pacific"
	RegionLATAM  Region = "Latin America"
)

// regionKeys maps short keys to regions.
var regionKeys = map[string]Region{
	"all":    RegionAll,
	"us":     RegionUS,
	"eu":     RegionEU,
	"global": RegionGlobal,
	"apac":   RegionAPAC,
	"latam":  RegionLATAM,
}

// ParseRegion resolves a region from its short key ("us", "eu").
func ParseRegion(s string) (Region, error) {
	if r, ok := regionKeys[strings.ToLower(strings.TrimSpace(s))]; ok {
		return r, nil
	}
	return "", fmt.Errorf("unknown region %q", s)
}

// regionStandards lists the standards offered in each region.
// RegionAll is computed from standardKeys.
var regionStandards = map[Region][]Standard{
	RegionUS: {
		StandardNISTCSF, StandardNIST80053, StandardNIST800171,
		StandardFedRAMPMod, StandardFedRAMPHigh, StandardCMMCL2,
		StandardDoDIL5, StandardHIPAA, StandardFINRA,
		StandardGLBA, StandardSOX, StandardNYDFS500,
		StandardCCPA, StandardNERCCIP, StandardFERPA,
		StandardNISTAIRMF, StandardSOC2, StandardHITRUST,
		StandardCISV8,
	},
	RegionEU: {
		StandardGDPR, StandardEUAIAct, StandardTISAX,
		StandardHDS, StandardISO27001, StandardISO42001,
		StandardIEC62443,
	},
	RegionGlobal: {
		StandardISO27001, StandardSOC2, StandardPCIDSS,
		StandardCISV8, StandardCISBenchmarks, StandardCSACCM,
		StandardISO42001, StandardNISTAIRMF, StandardOWASPLLM,
		StandardSWIFTCSCF, StandardIEC62443, StandardGxP,
		StandardCustom,
	},
	RegionAPAC: {
		StandardPIPL, StandardISO27001, StandardPCIDSS,
		StandardCISV8,
	},
	RegionLATAM: {
		StandardLGPD, StandardISO27001, StandardPCIDSS,
	},
}

// RegionStandards returns the standards offered in a region. The returned
// slice is a copy. RegionAll returns every standard in key order.
func RegionStandards(r Region) []Standard {
	if r == RegionAll {
		keys := StandardKeys()
		out := make([]Standard, len(keys))
		for i, k := range keys {
			out[i] = standardKeys[k]
		}
		return out
	}
	return append([]Standard(nil), regionStandards[r]...)
}

// RegionAllows reports whether every standard is offered in the region.
func RegionAllows(r Region, standards []Standard) bool {
	if r == RegionAll || r == "" {
		return true
	}
	offered := make(map[Standard]bool)
	for _, s := range regionStandards[r] {
		offered[s] = true
	}
	for _, s := range standards {
		if !offered[s] {
			return false
		}
	}
	return true
}

// Persona is the audience the report is written for.
type Persona string

// Supported personas.
const (
	PersonaCISO      Persona = "CISO (Business Risk Focus)"
	PersonaDevSecOps Persona = "DevSecOps (Automation & Code Focus)"
	PersonaAuditor   Persona = "Compliance Auditor (Regulatory Focus)"
	PersonaDeveloper Persona = "Software Developer (Actionable Fixes Focus)"
)

// personaKeys maps short keys to personas.
var personaKeys = map[string]Persona{
	"ciso":      PersonaCISO,
	"devsecops": PersonaDevSecOps,
	"auditor":   PersonaAuditor,
	"developer": PersonaDeveloper,
}

// ParsePersona resolves a persona from its short key.
func ParsePersona(s string) (Persona, error) {
	if p, ok := personaKeys[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown persona %q (want ciso, devsecops, auditor or developer)", s)
}

// Short returns the first word of the persona ("CISO").
func (p Persona) Short() string {
	short, _, _ := strings.Cut(string(p), " ")
	return short
}
