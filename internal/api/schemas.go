package api

// Amounts are accepted as JSON numbers or strings; both are parsed with
// decimal precision by the handlers.

const depositSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["amount", "description"],
  "properties": {
    "amount": {"type": ["string", "number"]},
    "description": {"type": "string", "maxLength": 140}
  }
}`

const withdrawSchema = depositSchema

const transferSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["amount", "recipient", "account"],
  "properties": {
    "amount": {"type": ["string", "number"]},
    "recipient": {"type": "string", "maxLength": 100},
    "account": {"type": "string", "maxLength": 34},
    "description": {"type": "string", "maxLength": 140}
  }
}`

// Review takes the raw form; every field is checked by the negotiator.
const reviewSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "amount": {"type": ["string", "number"]},
    "recipient": {"type": "string", "maxLength": 100},
    "account": {"type": "string", "maxLength": 34},
    "description": {"type": "string", "maxLength": 140}
  }
}`

const profileSchema = `{
  "type": "object",
  "additionalProperties": {"type": "string"},
  "properties": {
    "email": {"type": "string", "maxLength": 254},
    "phone": {"type": "string", "maxLength": 32},
    "address": {"type": "string", "maxLength": 200},
    "employmentStatus": {"type": "string", "maxLength": 64}
  }
}`

const assistantSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["prompt"],
  "properties": {
    "prompt": {"type": "string", "minLength": 1, "maxLength": 4000}
  }
}`
