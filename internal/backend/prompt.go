package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/sentinel/internal/model"
)

// chatMaterialLimit caps how much of the assessed material is repeated in
// the conversation instruction.
const chatMaterialLimit = 1000

// defaultAttachmentPrompt replaces an empty chat message that only carries
// attachments.
const defaultAttachmentPrompt = "Please analyze the attached technical files."

// ApplyPrompt asks the conversation for a complete replacement report.
const ApplyPrompt = `Produce the complete, updated security assessment report including every change and remediation discussed in this conversation.

Requirements:
1. Keep every external authoritative citation from the current report as a [Title](URL) link.
2. Keep the report structure: Executive TL;DR, Discovery, Threat Modeling with the mermaid attack-path diagram, Gap Analysis table, Remediation code, Risk Score and References.
3. End with the ::FINDING:: block, one line per finding.
4. Answer with the raw Markdown of the report only.`

// assessmentInstruction builds the system instruction for report generation.
func assessmentInstruction(now time.Time, persona model.Persona, standards []model.Standard) string {
	scope := model.JoinStandards(standards)

	var sb strings.Builder
	sb.WriteString("You are the Sentinel security assessment engine, acting as a senior security architect and compliance auditor.\n\n")

	fmt.Fprintf(&sb, "## Audience\nThe reader is a %s. Match their vocabulary, and write the Executive TL;DR for their priorities.\n\n", persona)
	fmt.Fprintf(&sb, "## Scope\nAudit the material against all of these standards in one unified report: %s.\n\n", scope)

	sb.WriteString("## Header\nBegin the report with:\n")
	fmt.Fprintf(&sb, "- **Report Generated**: %s\n", now.Format(time.DateOnly))
	fmt.Fprintf(&sb, "- **Persona Context**: %s\n", persona)
	fmt.Fprintf(&sb, "- **Assessment Scope**: %s\n\n", scope)

	sb.WriteString(`## Sections
1. "## Executive TL;DR": three to five bullet points for the reader.
2. Discovery: platforms, AI/ML components and software dependencies.
3. Threat modeling: MITRE ATT&CK mapping and a ` + "```mermaid" + ` "graph TD" attack-path diagram. Mark attackers and vulnerable nodes by appending ":::threat" to the node ID instead of styling them.
4. Gap analysis: a table mapping each finding across the standards, with control ID, title and summary.
5. Remediation: one consolidated ` + "```terraform" + ` block for the technical findings.
6. Executive summary containing the line "**Risk Score**: CRITICAL|HIGH|MEDIUM|LOW".
7. References: three to five authoritative links (NIST, ISO, CIS, OWASP) written as [Title](URL), also cited inline.

## Findings block
After everything else, write one line per finding:
::FINDING:: SEVERITY :: CONTROL_ID :: TITLE :: DESCRIPTION :: REMEDIATION
SEVERITY is CRITICAL, HIGH, MEDIUM or LOW. Fields must not contain "::" or line breaks.
`)
	return sb.String()
}

// assessmentPrompt builds the user turn of a report generation.
func assessmentPrompt(req model.AssessmentRequest) string {
	return fmt.Sprintf("Analyze this architecture:\n%s\n\nAudit it against: %s.\nReader: %s.",
		req.Material, model.JoinStandards(req.Standards), req.Persona)
}

// validationPrompt asks whether material is detailed enough.
func validationPrompt(material string, standards []model.Standard) string {
	return fmt.Sprintf(`Decide whether the architecture below has enough detail for a high-fidelity security assessment against: %s.

Typical gaps are the cloud provider and region, data sensitivity, authentication mechanisms (OIDC, SAML), database encryption and network segmentation.
For each gap, describe a form field the user can fill in.

Architecture:
%s`, model.JoinStandards(standards), material)
}

// simulationInstruction is the system instruction of attack simulations.
const simulationInstruction = `You are the Sentinel strike simulator, a red-team operator and exploit researcher.
Narrate a realistic attack against the architecture using the vulnerability given.

Format:
1. Simulation log in a terminal style ("[INFO] ...").
2. Kill chain: reconnaissance, weaponization, delivery, exploitation, installation, command and control, actions on objectives.
3. A non-executable proof-of-concept snippet illustrating the exploit logic.
4. MITRE ATT&CK technique IDs used.
5. Business and compliance impact if the attack succeeds.
6. Remediation priority with effort estimate.`

// simulationPrompt builds the user turn of an attack simulation.
func simulationPrompt(findingSummary, infrastructure, standard string) string {
	return fmt.Sprintf("SIMULATE ATTACK VECTOR\nTARGET ARCHITECTURE: %s\nVULNERABILITY: %s\nCOMPLIANCE FOCUS: %s\n\nLook for non-obvious attack paths.",
		infrastructure, findingSummary, standard)
}

// chatInstruction builds the system instruction of a remediation chat.
func chatInstruction(cc model.ConversationContext) string {
	material := cc.Material
	if len(material) > chatMaterialLimit {
		material = strings.ToValidUTF8(material[:chatMaterialLimit], "") + "..."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are the Sentinel remediation copilot assisting a %s.\n\n", cc.Persona)
	sb.WriteString(`Rules:
1. Treat uploaded files as primary technical context. Review .tf, .yaml and .json files for vulnerabilities and compliance gaps against the report.
2. Answer the user's question; use the report and attachments as context only.
3. Whenever you regenerate the report, keep every [Title](URL) citation it already has.
4. Discuss changes to the report, but only write a full updated report when asked for one.
`)
	fmt.Fprintf(&sb, "5. Speak in a tone suitable for a %s.\n\n", cc.Persona)
	fmt.Fprintf(&sb, "Compliance standards: %s.\n\n", model.JoinStandards(cc.Standards))
	fmt.Fprintf(&sb, "Current report:\n%s\n\n", cc.Report)
	fmt.Fprintf(&sb, "Infrastructure design:\n%s\n", material)
	return sb.String()
}
