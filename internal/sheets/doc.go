// Package sheets reads the CRM exports and writes the reviewable workbooks.
//
// Inputs are CSV files exported from the CRM: a contacts file (one row per
// person, with an Account Name column naming the organization) and an
// organizations file (Account Name, Website). Exports are often Latin-1, so
// both loaders accept an encoding name.
//
// Outputs are XLSX workbooks written with excelize. The annotated workbook is
// the reconciliation result: one row per record with New/Removed flags, new
// rows filled yellow and removed rows struck through. The cleaned workbook is
// the deliverable produced after duplicate detection, with a trailing
// "Not Listed" section for people who left.
package sheets
