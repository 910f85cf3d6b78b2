package pipeline

import "encoding/json"

// Default prompt content. All of it is replaceable through
// configuration; the pipeline never interprets it.

// DefaultResearchGoal describes the default classification task: a
// survey of federal climate adaptation policy.
const DefaultResearchGoal = `The goal of this research is to develop a comprehensive inventory of federal climate adaptation policies in the United States. We define climate adaptation policies as policies that support adjustments in ecological, social, or economic systems in response to actual or expected climatic stimuli and their effects or impacts.
### Grounds for inclusion:
* Action constitutes a policy instrument (can include plans or strategies).
* Explicit Adaptation Policies: policies that would not be implemented for any other reason than to adapt to climate change.
* Explicit Hazard Policies: policies that address climate-related hazards (such as flood, heat, or drought) but do not directly mention climate change or adaptation.
* Implicit Policies: policies that may be implemented for multiple reasons not exclusive to climate adaptation, but that have an impact on climate resilience.
### Grounds for exclusion:
* Policies focused exclusively on climate change mitigation.
* Aspirational policy statements with no clear policy instrument.
* Environmental or disaster preparedness policies that do not significantly relate to the effects of climate change.
* Actions taking place solely at the local or state government level, with no federal involvement.
### Hazard Type:
Classify the policy by the environmental hazard it discusses: Flood, Sea-Level Rise/Coastal Erosion, Storms, Wildfire, Heat, Drought, Non-Hazard Specific, or Multi-Hazard when multiple hazards are mentioned.
### Sector Classification:
Classify the document by sector: Emergency management, Infrastructure, Health, Education, Human services, Agriculture, Water, Environment, Energy, Coast management, Development, National Security, Forestry, Fisheries, Transportation, Tourism, Economy, Culture, Technology, Inter-sectoral, or Other. Even if you have decided this document is not relevant, please supply a classification.
### Policy Instrument Classification:
Classify the primary policy instrument as Appropriating Statute or Authorizing Statute, and supply a secondary policy instrument where one applies.`

// DefaultBasePrompt is the classification prompt template. Placeholders
// {research_goal}, {title}, {url} and {text} are filled per document.
const DefaultBasePrompt = `You are a helpful AI assistant that is uniquely skilled at helping people with data collection and other associated research tasks.
You will be given the text from a webpage or PDF, its title, if one exists, and its url. From this information you must decide how relevant this webpage is to the research goal.
The categories of relevancy should only be one of the following: 'Not relevant', 'Somewhat relevant', 'Relevant', 'Very relevant', 'Highly relevant'.
Be careful and mindful of synonyms and words which may have multiple meanings in different context. For example, just because a document mentions "adaptation" doesn't mean it is about climate adaptation.
No matter the input, you should respond with two things 1) a determination of whether or not this input is relevant to the research goal and 2) a short comment on why you made that determination.
## Research Goal
{research_goal}
## Input website
### Title: {title}
### URL: {url}
### Text: {text}
## Correctly formatted relevancy determination`

// DefaultSchemaName labels the response schema on the API request.
const DefaultSchemaName = "relevancy_determination"

// DefaultSchema constrains the default classification response.
var DefaultSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "hazard_type": {"type": "string"},
    "hazard_explicit_adaptation": {"type": "string"},
    "hazard_explicit_hazard": {"type": "string"},
    "hazard_implicit": {"type": "string"},
    "sector_class": {"type": "string"},
    "primary_policy_instrument": {"type": "string"},
    "secondary_policy_instrument": {"type": "string"},
    "relevancy": {"type": "string"},
    "comment": {"type": "string"}
  },
  "required": ["relevancy", "comment"],
  "additionalProperties": false
}`)
