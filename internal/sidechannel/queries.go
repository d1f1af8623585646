/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements. See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sidechannel

// region System Information Queries
const queryPostgreSqlVersion = `SHOW SERVER_VERSION`

// endregion

// region PostgreSQL Catalog Queries
const queryReadEnumTypes = `
SELECT n.nspname || '.' || t.typname AS enum_type, e.enumlabel
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_enum e ON e.enumtypid = t.oid
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
ORDER BY t.oid, e.enumsortorder`

const queryReadTableColumns = `
SELECT c.column_name,
       CASE c.data_type
           WHEN 'USER-DEFINED' THEN c.udt_schema || '.' || c.udt_name
           ELSE c.data_type
       END AS type_descriptor
FROM information_schema.columns c
WHERE c.table_schema = COALESCE(NULLIF($1, ''), current_schema())
  AND c.table_name = $2
ORDER BY c.ordinal_position`

// endregion
